package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type earningsRepository struct {
	collection *mongo.Collection
}

func NewEarningsRepository(db *mongo.Database) interfaces.EarningsRepository {
	return &earningsRepository{
		collection: db.Collection("driver_earnings"),
	}
}

func (r *earningsRepository) UpsertDaily(ctx context.Context, driverID primitive.ObjectID, day string, gross, fee, net models.Money) error {
	filter := bson.M{
		"driver_id": driverID,
		"day":       day,
	}
	update := bson.M{
		"$inc": bson.M{
			"ride_count":   1,
			"gross_amount": gross,
			"platform_fee": fee,
			"net_amount":   net,
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert daily earnings: %w", err)
	}

	return nil
}

func (r *earningsRepository) GetByDriverDay(ctx context.Context, driverID primitive.ObjectID, day string) (*models.DriverEarnings, error) {
	var earnings models.DriverEarnings
	err := r.collection.FindOne(ctx, bson.M{"driver_id": driverID, "day": day}).Decode(&earnings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("earnings")
		}
		return nil, fmt.Errorf("failed to get daily earnings: %w", err)
	}

	return &earnings, nil
}

func (r *earningsRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID, fromDay, toDay string) ([]*models.DriverEarnings, error) {
	filter := bson.M{
		"driver_id": driverID,
		"day": bson.M{
			"$gte": fromDay,
			"$lte": toDay,
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list earnings: %w", err)
	}
	defer cursor.Close(ctx)

	var earnings []*models.DriverEarnings
	if err := cursor.All(ctx, &earnings); err != nil {
		return nil, fmt.Errorf("failed to decode earnings: %w", err)
	}

	return earnings, nil
}
