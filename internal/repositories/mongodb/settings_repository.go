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
)

const settingsCacheKey = "settings:driver_nearby"

type settingsRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
}

func NewSettingsRepository(db *database.MongoDB, cache *cache.RedisCache) interfaces.SettingsRepository {
	return &settingsRepository{
		collection: db.Collection("settings"),
		cache:      cache,
	}
}

func (r *settingsRepository) GetDispatchSettings(ctx context.Context) (*models.DispatchSettings, error) {
	if r.cache != nil {
		var cached models.DispatchSettings
		if err := r.cache.Get(ctx, settingsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var settings models.DispatchSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": models.DispatchSettingsID}).Decode(&settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return defaultDispatchSettings(), nil
		}
		return nil, fmt.Errorf("failed to get dispatch settings: %w", err)
	}

	if settings.DriverAcceptRejectDurationSec <= 0 {
		settings.DriverAcceptRejectDurationSec = int(utils.DefaultAcceptRejectDuration.Seconds())
	}
	if settings.OrderAutoCancelDurationMin <= 0 {
		settings.OrderAutoCancelDurationMin = utils.DefaultOrderAutoCancelMinutes
	}

	if r.cache != nil {
		r.cache.Set(ctx, settingsCacheKey, &settings, utils.SettingsCacheTTL)
	}

	return &settings, nil
}

func defaultDispatchSettings() *models.DispatchSettings {
	return &models.DispatchSettings{
		ID:                            models.DispatchSettingsID,
		MinimumDepositToAccept:        utils.DefaultMinimumDeposit,
		DriverAcceptRejectDurationSec: int(utils.DefaultAcceptRejectDuration.Seconds()),
		OrderAutoCancelDurationMin:    utils.DefaultOrderAutoCancelMinutes,
	}
}
