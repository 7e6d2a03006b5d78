package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"
	"ridelink/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideRepository struct {
	collection *mongo.Collection
}

func NewRideRepository(db *mongo.Database) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	now := time.Now()
	ride.CreatedAt = now
	ride.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("ride")
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) GetByRideNumber(ctx context.Context, rideNumber string) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"ride_number": rideNumber}).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("ride")
		}
		return nil, fmt.Errorf("failed to get ride by number: %w", err)
	}

	return &ride, nil
}

// AcceptPending claims a pending ride. The pending-status filter makes
// concurrent accepts race on the same document; exactly one wins.
func (r *rideRepository) AcceptPending(ctx context.Context, id, driverID, vehicleID primitive.ObjectID, acceptedAt time.Time) (*models.Ride, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.RideStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":      models.RideStatusAccepted,
			"driver_id":   driverID,
			"vehicle_id":  vehicleID,
			"accepted_at": acceptedAt,
			"updated_at":  acceptedAt,
		},
	}

	return r.findOneAndUpdate(ctx, filter, update, "ride is no longer available")
}

func (r *rideRepository) Start(ctx context.Context, id primitive.ObjectID, startedAt time.Time) (*models.Ride, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.RideStatusAccepted,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.RideStatusInProgress,
			"started_at": startedAt,
			"updated_at": startedAt,
		},
	}

	return r.findOneAndUpdate(ctx, filter, update, "ride cannot be started")
}

func (r *rideRepository) Complete(ctx context.Context, id primitive.ObjectID, completion *interfaces.RideCompletion) (*models.Ride, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.RideStatusInProgress,
	}
	update := bson.M{
		"$set": bson.M{
			"status":              models.RideStatusCompleted,
			"final_fare":          completion.FinalFare,
			"actual_distance_km":  completion.ActualDistance,
			"actual_duration_min": completion.ActualDuration,
			"payment_id":          completion.PaymentID,
			"completed_at":        completion.CompletedAt,
			"updated_at":          completion.CompletedAt,
		},
	}

	return r.findOneAndUpdate(ctx, filter, update, "ride cannot be completed")
}

func (r *rideRepository) Cancel(ctx context.Context, id primitive.ObjectID, allowed []models.RideStatus, cancelledBy models.CancelActor, reason string, cancelledAt time.Time) (*models.Ride, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": allowed},
	}
	update := bson.M{
		"$set": bson.M{
			"status":        models.RideStatusCancelled,
			"cancelled_by":  cancelledBy,
			"cancel_reason": reason,
			"cancelled_at":  cancelledAt,
			"updated_at":    cancelledAt,
		},
	}

	return r.findOneAndUpdate(ctx, filter, update, "ride cannot be cancelled")
}

func (r *rideRepository) SetNegotiatedFare(ctx context.Context, id primitive.ObjectID, fare models.Money) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.RideStatusPending},
		bson.M{"$set": bson.M{
			"negotiated_fare": fare,
			"updated_at":      time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set negotiated fare: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("ride is no longer pending")
	}

	return nil
}

func (r *rideRepository) GetByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.list(ctx, bson.M{"rider_id": riderID}, params)
}

func (r *rideRepository) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.list(ctx, bson.M{"driver_id": driverID}, params)
}

func (r *rideRepository) GetByStatus(ctx context.Context, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return r.list(ctx, bson.M{"status": status}, params)
}

func (r *rideRepository) List(ctx context.Context, filter *interfaces.RideFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	query := bson.M{}
	if filter != nil {
		if filter.RiderID != nil {
			query["rider_id"] = *filter.RiderID
		}
		if filter.DriverID != nil {
			query["driver_id"] = *filter.DriverID
		}
		if filter.Status != nil {
			query["status"] = *filter.Status
		}
		if filter.From != nil || filter.To != nil {
			dateRange := bson.M{}
			if filter.From != nil {
				dateRange["$gte"] = *filter.From
			}
			if filter.To != nil {
				dateRange["$lt"] = *filter.To
			}
			query["requested_at"] = dateRange
		}
	}

	return r.list(ctx, query, params)
}

func (r *rideRepository) FindDispatchable(ctx context.Context, now time.Time, window time.Duration, limit int) ([]*models.Ride, error) {
	filter := bson.M{
		"status": models.RideStatusPending,
		"$or": []bson.M{
			{"scheduled_time": nil},
			{"scheduled_time": bson.M{"$lte": now.Add(window)}},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find dispatchable rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode rides: %w", err)
	}

	return rides, nil
}

func (r *rideRepository) list(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, 0, fmt.Errorf("failed to decode rides: %w", err)
	}

	return rides, total, nil
}

func (r *rideRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, conflictMsg string) (*models.Ride, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Conflict(conflictMsg)
		}
		return nil, fmt.Errorf("failed to update ride: %w", err)
	}

	return &ride, nil
}
