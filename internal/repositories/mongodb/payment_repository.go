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

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection("payments"),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("payment")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) GetByRide(ctx context.Context, rideID primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"ride_id": rideID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("payment")
		}
		return nil, fmt.Errorf("failed to get payment by ride: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string, processedAt time.Time) error {
	return r.updateStatus(ctx, id, bson.M{
		"status":         models.PaymentStatusPaid,
		"transaction_id": transactionID,
		"processed_at":   processedAt,
		"updated_at":     processedAt,
	})
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	return r.updateStatus(ctx, id, bson.M{
		"status":         models.PaymentStatusFailed,
		"failure_reason": reason,
		"updated_at":     time.Now(),
	})
}

func (r *paymentRepository) MarkRefunded(ctx context.Context, id primitive.ObjectID, refundedAt time.Time) error {
	return r.updateStatus(ctx, id, bson.M{
		"status":      models.PaymentStatusRefunded,
		"refunded_at": refundedAt,
		"updated_at":  refundedAt,
	})
}

func (r *paymentRepository) GetByDriver(ctx context.Context, driverID primitive.ObjectID, from, to time.Time) ([]*models.Payment, error) {
	filter := bson.M{
		"driver_id": driverID,
		"status":    models.PaymentStatusPaid,
		"processed_at": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "processed_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by driver: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) updateStatus(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("payment")
	}

	return nil
}
