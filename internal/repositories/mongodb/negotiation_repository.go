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

type negotiationRepository struct {
	collection *mongo.Collection
}

func NewNegotiationRepository(db *mongo.Database) interfaces.NegotiationRepository {
	return &negotiationRepository{
		collection: db.Collection("negotiations"),
	}
}

func (r *negotiationRepository) Create(ctx context.Context, negotiation *models.Negotiation) error {
	if negotiation.ID.IsZero() {
		negotiation.ID = primitive.NewObjectID()
	}
	now := time.Now()
	negotiation.CreatedAt = now
	negotiation.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, negotiation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("a negotiation is already pending for this ride")
		}
		return fmt.Errorf("failed to create negotiation: %w", err)
	}

	return nil
}

func (r *negotiationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Negotiation, error) {
	var negotiation models.Negotiation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&negotiation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("negotiation")
		}
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}

	return &negotiation, nil
}

func (r *negotiationRepository) GetOpenByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Negotiation, error) {
	return r.list(ctx, bson.M{
		"ride_id": rideID,
		"status":  models.NegotiationStatusPending,
	})
}

func (r *negotiationRepository) GetByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Negotiation, error) {
	return r.list(ctx, bson.M{"ride_id": rideID})
}

func (r *negotiationRepository) Respond(ctx context.Context, id primitive.ObjectID, status models.NegotiationStatus, respondedAt time.Time) (*models.Negotiation, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.NegotiationStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":       status,
			"responded_at": respondedAt,
			"updated_at":   respondedAt,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var negotiation models.Negotiation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&negotiation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Conflict("negotiation has already been resolved")
		}
		return nil, fmt.Errorf("failed to respond to negotiation: %w", err)
	}

	return &negotiation, nil
}

func (r *negotiationRepository) MarkExpired(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"_id":    bson.M{"$in": ids},
			"status": models.NegotiationStatusPending,
		},
		bson.M{"$set": bson.M{
			"status":     models.NegotiationStatusExpired,
			"updated_at": at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark negotiations expired: %w", err)
	}

	return nil
}

func (r *negotiationRepository) ExpireOpenForRide(ctx context.Context, rideID primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"ride_id": rideID,
			"status":  models.NegotiationStatusPending,
		},
		bson.M{"$set": bson.M{
			"status":     models.NegotiationStatusExpired,
			"updated_at": at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to expire negotiations for ride: %w", err)
	}

	return nil
}

func (r *negotiationRepository) list(ctx context.Context, filter bson.M) ([]*models.Negotiation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list negotiations: %w", err)
	}
	defer cursor.Close(ctx)

	var negotiations []*models.Negotiation
	if err := cursor.All(ctx, &negotiations); err != nil {
		return nil, fmt.Errorf("failed to decode negotiations: %w", err)
	}

	return negotiations, nil
}
