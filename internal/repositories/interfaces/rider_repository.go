package interfaces

import (
	"context"
	"time"

	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RiderRepository interface {
	Create(ctx context.Context, rider *models.Rider) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error)

	// BindActiveRide sets the rider's active ride only when none is set,
	// enforcing the one-active-ride rule at the document level.
	BindActiveRide(ctx context.Context, riderID, rideID primitive.ObjectID) error
	ClearActiveRide(ctx context.Context, riderID, rideID primitive.ObjectID) error

	IncrementRideCount(ctx context.Context, riderID primitive.ObjectID) error
	AddRecentLocation(ctx context.Context, riderID primitive.ObjectID, location *models.Location) error
	TouchLastActive(ctx context.Context, riderID primitive.ObjectID, at time.Time) error
	AddDeviceToken(ctx context.Context, riderID primitive.ObjectID, token *models.DeviceToken) error
}
