package interfaces

import (
	"context"
	"time"

	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NegotiationRepository interface {
	Create(ctx context.Context, negotiation *models.Negotiation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Negotiation, error)
	GetOpenByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Negotiation, error)
	GetByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Negotiation, error)

	// Respond flips a pending negotiation to accepted or rejected. The filter
	// requires pending status so a late response after expiry sweep loses.
	Respond(ctx context.Context, id primitive.ObjectID, status models.NegotiationStatus, respondedAt time.Time) (*models.Negotiation, error)

	// MarkExpired lazily settles proposals whose window has passed.
	MarkExpired(ctx context.Context, ids []primitive.ObjectID, at time.Time) error
	ExpireOpenForRide(ctx context.Context, rideID primitive.ObjectID, at time.Time) error
}
