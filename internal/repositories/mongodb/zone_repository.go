package mongodb

import (
	"context"
	"fmt"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/utils"
	"godeliver/pkg/cache"
	"godeliver/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const zoneCacheKey = "zones:published"

type zoneRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
}

func NewZoneRepository(db *database.MongoDB, cache *cache.RedisCache) interfaces.ZoneRepository {
	return &zoneRepository{
		collection: db.Collection("zones"),
		cache:      cache,
	}
}

// ListPublished returns published zones sorted by _id so overlapping-polygon
// resolution stays deterministic between calls.
func (r *zoneRepository) ListPublished(ctx context.Context) ([]*models.Zone, error) {
	if r.cache != nil {
		var cached []*models.Zone
		if err := r.cache.Get(ctx, zoneCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"publish": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer cursor.Close(ctx)

	var zones []*models.Zone
	if err := cursor.All(ctx, &zones); err != nil {
		return nil, fmt.Errorf("failed to decode zones: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, zoneCacheKey, zones, utils.ZoneCacheTTL)
	}

	return zones, nil
}
