package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureDispatchIndexes creates the indexes the dispatch engine queries
// against. All creations are idempotent.
func EnsureDispatchIndexes(ctx context.Context, db *mongo.Database) error {
	orderIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "driver_id", Value: 1}}},
	}
	if _, err := db.Collection("orders").Indexes().CreateMany(ctx, orderIndexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	driverIndexes := []mongo.IndexModel{
		// Coarse candidate query: role + active + wallet floor.
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}, {Key: "wallet_amount", Value: 1}}},
		// Cleanup fan-in: which drivers hold a given order offer.
		{Keys: bson.D{{Key: "order_request_data", Value: 1}}},
	}
	if _, err := db.Collection("drivers").Indexes().CreateMany(ctx, driverIndexes); err != nil {
		return fmt.Errorf("failed to create driver indexes: %w", err)
	}

	zoneIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "publish", Value: 1}}},
	}
	if _, err := db.Collection("zones").Indexes().CreateMany(ctx, zoneIndexes); err != nil {
		return fmt.Errorf("failed to create zone indexes: %w", err)
	}

	return nil
}

// EnableOrderPreImages turns on change-stream pre-images for the orders
// collection so the watcher can diff before/after documents. Requires
// MongoDB 6.0+; the error is surfaced so callers can decide to run without
// the no-op guard.
func EnableOrderPreImages(ctx context.Context, db *mongo.Database) error {
	cmd := bson.D{
		{Key: "collMod", Value: "orders"},
		{Key: "changeStreamPreAndPostImages", Value: bson.D{{Key: "enabled", Value: true}}},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("failed to enable order pre-images: %w", err)
	}
	return nil
}
