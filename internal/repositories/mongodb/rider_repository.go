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
)

type riderRepository struct {
	collection *mongo.Collection
}

func NewRiderRepository(db *mongo.Database) interfaces.RiderRepository {
	return &riderRepository{
		collection: db.Collection("riders"),
	}
}

func (r *riderRepository) Create(ctx context.Context, rider *models.Rider) error {
	if rider.ID.IsZero() {
		rider.ID = primitive.NewObjectID()
	}
	now := time.Now()
	rider.CreatedAt = now
	rider.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, rider)
	if err != nil {
		return fmt.Errorf("failed to create rider: %w", err)
	}

	return nil
}

func (r *riderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error) {
	var rider models.Rider
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("rider")
		}
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}

	return &rider, nil
}

// BindActiveRide only matches when no active ride is bound, so a rider who
// already has one in flight cannot pick up a second.
func (r *riderRepository) BindActiveRide(ctx context.Context, riderID, rideID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": riderID, "active_ride_id": nil},
		bson.M{"$set": bson.M{
			"active_ride_id": rideID,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to bind active ride: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("rider already has an active ride")
	}

	return nil
}

func (r *riderRepository) ClearActiveRide(ctx context.Context, riderID, rideID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": riderID, "active_ride_id": rideID},
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

func (r *riderRepository) IncrementRideCount(ctx context.Context, riderID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": riderID},
		bson.M{
			"$inc": bson.M{"total_rides": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment ride count: %w", err)
	}

	return nil
}

func (r *riderRepository) AddRecentLocation(ctx context.Context, riderID primitive.ObjectID, location *models.Location) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": riderID},
		bson.M{
			"$push": bson.M{
				"recent_locations": bson.M{
					"$each":  []*models.Location{location},
					"$slice": -models.MaxRecentLocations,
				},
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add recent location: %w", err)
	}

	return nil
}

func (r *riderRepository) TouchLastActive(ctx context.Context, riderID primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": riderID},
		bson.M{"$set": bson.M{
			"last_active_at": at,
			"updated_at":     at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to touch last active: %w", err)
	}

	return nil
}

func (r *riderRepository) AddDeviceToken(ctx context.Context, riderID primitive.ObjectID, token *models.DeviceToken) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": riderID},
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
