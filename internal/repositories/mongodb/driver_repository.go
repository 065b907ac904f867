package mongodb

import (
	"context"
	"fmt"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type driverRepository struct {
	collection *mongo.Collection
}

func NewDriverRepository(db *database.MongoDB) interfaces.DriverRepository {
	return &driverRepository{
		collection: db.Collection("drivers"),
	}
}

func (r *driverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	var driver models.Driver
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return &driver, nil
}

func (r *driverRepository) ListActiveWithMinWallet(ctx context.Context, minWallet float64) ([]*models.Driver, error) {
	filter := bson.M{
		"role":          models.RoleDriver,
		"is_active":     true,
		"wallet_amount": bson.M{"$gte": minWallet},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []*models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode candidate drivers: %w", err)
	}

	return drivers, nil
}

func (r *driverRepository) ListActive(ctx context.Context) ([]*models.Driver, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"role":      models.RoleDriver,
		"is_active": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query active drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []*models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode active drivers: %w", err)
	}

	return drivers, nil
}

// AddOrderRequest appends the offer to every candidate inbox in one batched
// write. $addToSet keeps the operation idempotent across broadcast
// re-triggers and commutative across concurrent dispatch cycles.
func (r *driverRepository) AddOrderRequest(ctx context.Context, driverIDs []string, orderID string) error {
	if len(driverIDs) == 0 {
		return nil
	}

	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": driverIDs}},
		bson.M{
			"$addToSet": bson.M{"order_request_data": orderID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append order request: %w", err)
	}

	return nil
}

func (r *driverRepository) RemoveOrderRequest(ctx context.Context, driverID, orderID string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": driverID},
		bson.M{
			"$pull": bson.M{"order_request_data": orderID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove order request: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrDriverNotFound
	}

	return nil
}

func (r *driverRepository) PurgeOrderRequests(ctx context.Context, orderID, exceptDriverID string) (int64, error) {
	filter := bson.M{"order_request_data": orderID}
	if exceptDriverID != "" {
		filter["_id"] = bson.M{"$ne": exceptDriverID}
	}

	result, err := r.collection.UpdateMany(ctx, filter,
		bson.M{
			"$pull": bson.M{"order_request_data": orderID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge order requests: %w", err)
	}

	return result.ModifiedCount, nil
}
