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

type vehicleRepository struct {
	collection *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) interfaces.VehicleRepository {
	return &vehicleRepository{
		collection: db.Collection("vehicles"),
	}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	now := time.Now()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("vehicle")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &vehicle, nil
}

func (r *vehicleRepository) FirstUsableForDriver(ctx context.Context, driverID primitive.ObjectID, minSeats int) (*models.Vehicle, error) {
	filter := bson.M{
		"driver_id":   driverID,
		"is_active":   true,
		"is_verified": true,
		"seat_count":  bson.M{"$gte": minSeats},
	}

	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, filter).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("usable vehicle")
		}
		return nil, fmt.Errorf("failed to find vehicle for driver: %w", err)
	}

	return &vehicle, nil
}
