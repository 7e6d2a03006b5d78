package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the ride engine queries against. Safe to
// call on every startup; mongo treats existing identical indexes as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"rides": {
			{Keys: bson.D{{Key: "rider_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduled_time", Value: 1}}},
			{Keys: bson.D{{Key: "pickup", Value: "2dsphere"}}},
			{
				Keys:    bson.D{{Key: "ride_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"negotiations": {
			{Keys: bson.D{{Key: "ride_id", Value: 1}, {Key: "status", Value: 1}}},
			{
				// One open negotiation per ride, enforced at the storage
				// layer so concurrent proposes cannot both land.
				Keys: bson.D{{Key: "ride_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
		},
		"payments": {
			{
				Keys:    bson.D{{Key: "ride_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"driver_earnings": {
			{
				Keys:    bson.D{{Key: "driver_id", Value: 1}, {Key: "day", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"wallets": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"promo_redemptions": {
			{Keys: bson.D{{Key: "promo_id", Value: 1}, {Key: "rider_id", Value: 1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		_, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}

	return nil
}
