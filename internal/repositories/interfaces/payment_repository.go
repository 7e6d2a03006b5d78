package interfaces

import (
	"context"
	"time"

	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	GetByRide(ctx context.Context, rideID primitive.ObjectID) (*models.Payment, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string, processedAt time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error
	MarkRefunded(ctx context.Context, id primitive.ObjectID, refundedAt time.Time) error
	GetByDriver(ctx context.Context, driverID primitive.ObjectID, from, to time.Time) ([]*models.Payment, error)
}
