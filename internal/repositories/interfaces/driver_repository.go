package interfaces

import (
	"context"
	"time"

	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error)

	BindActiveRide(ctx context.Context, driverID, rideID primitive.ObjectID) error
	ClearActiveRide(ctx context.Context, driverID, rideID primitive.ObjectID) error

	// RecordCompletion bumps ride count and lifetime earnings after a ride
	// settles.
	RecordCompletion(ctx context.Context, driverID primitive.ObjectID, earning models.Money) error

	UpdateLocation(ctx context.Context, driverID primitive.ObjectID, location *models.Location, at time.Time) error
	SetOnline(ctx context.Context, driverID primitive.ObjectID, online bool) error

	// ListAvailable returns online, verified drivers with no active ride and
	// a known location.
	ListAvailable(ctx context.Context, limit int) ([]*models.Driver, error)
	AddDeviceToken(ctx context.Context, driverID primitive.ObjectID, token *models.DeviceToken) error
}
