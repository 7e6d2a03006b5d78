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

type driverRepository struct {
	collection *mongo.Collection
}

func NewDriverRepository(db *mongo.Database) interfaces.DriverRepository {
	return &driverRepository{
		collection: db.Collection("drivers"),
	}
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	if driver.ID.IsZero() {
		driver.ID = primitive.NewObjectID()
	}
	now := time.Now()
	driver.CreatedAt = now
	driver.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, driver)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	var driver models.Driver
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&driver)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("driver")
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return &driver, nil
}

func (r *driverRepository) BindActiveRide(ctx context.Context, driverID, rideID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": driverID, "active_ride_id": nil},
		bson.M{"$set": bson.M{
			"active_ride_id": rideID,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to bind active ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("driver already has an active ride")
	}

	return nil
}

func (r *driverRepository) ClearActiveRide(ctx context.Context, driverID, rideID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": driverID, "active_ride_id": rideID},
		bson.M{"$set": bson.M{
			"active_ride_id": nil,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear active ride: %w", err)
	}

	return nil
}

func (r *driverRepository) RecordCompletion(ctx context.Context, driverID primitive.ObjectID, earning models.Money) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": driverID},
		bson.M{
			"$inc": bson.M{
				"total_rides":    1,
				"total_earnings": earning,
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	return nil
}

func (r *driverRepository) UpdateLocation(ctx context.Context, driverID primitive.ObjectID, location *models.Location, at time.Time) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": driverID},
		bson.M{"$set": bson.M{
			"current_location":    location,
			"location_updated_at": at,
			"updated_at":          at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}

	return nil
}

func (r *driverRepository) SetOnline(ctx context.Context, driverID primitive.ObjectID, online bool) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": driverID},
		bson.M{"$set": bson.M{
			"is_online":  online,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set online status: %w", err)
	}

	return nil
}

func (r *driverRepository) ListAvailable(ctx context.Context, limit int) ([]*models.Driver, error) {
	filter := bson.M{
		"is_active":        true,
		"is_verified":      true,
		"is_online":        true,
		"active_ride_id":   nil,
		"current_location": bson.M{"$ne": nil},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "location_updated_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list available drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []*models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode drivers: %w", err)
	}

	return drivers, nil
}

func (r *driverRepository) AddDeviceToken(ctx context.Context, driverID primitive.ObjectID, token *models.DeviceToken) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": driverID},
		bson.M{
			"$addToSet": bson.M{"device_tokens": token},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add device token: %w", err)
	}

	return nil
}
