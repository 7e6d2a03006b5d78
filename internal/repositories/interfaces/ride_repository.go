package interfaces

import (
	"context"
	"time"

	"ridelink/internal/models"
	"ridelink/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideCompletion carries the settled values written when a ride finishes.
type RideCompletion struct {
	FinalFare      models.Money
	ActualDistance float64
	ActualDuration int
	PaymentID      primitive.ObjectID
	CompletedAt    time.Time
}

// RideFilter narrows a ride listing. Nil fields are ignored.
type RideFilter struct {
	RiderID  *primitive.ObjectID
	DriverID *primitive.ObjectID
	Status   *models.RideStatus
	From     *time.Time
	To       *time.Time
}

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	GetByRideNumber(ctx context.Context, rideNumber string) (*models.Ride, error)

	// AcceptPending atomically claims a pending ride for a driver. It fails
	// with a conflict when the ride is no longer pending, which is how
	// concurrent accepts are serialized.
	AcceptPending(ctx context.Context, id, driverID, vehicleID primitive.ObjectID, acceptedAt time.Time) (*models.Ride, error)
	Start(ctx context.Context, id primitive.ObjectID, startedAt time.Time) (*models.Ride, error)
	Complete(ctx context.Context, id primitive.ObjectID, completion *RideCompletion) (*models.Ride, error)
	Cancel(ctx context.Context, id primitive.ObjectID, allowed []models.RideStatus, cancelledBy models.CancelActor, reason string, cancelledAt time.Time) (*models.Ride, error)

	// SetNegotiatedFare records an accepted counter-offer; only valid while
	// the ride is still pending.
	SetNegotiatedFare(ctx context.Context, id primitive.ObjectID, fare models.Money) error

	GetByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetByStatus(ctx context.Context, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	List(ctx context.Context, filter *RideFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error)

	// FindDispatchable returns pending rides visible to drivers: unscheduled
	// rides plus scheduled rides whose pickup time falls within the window.
	FindDispatchable(ctx context.Context, now time.Time, window time.Duration, limit int) ([]*models.Ride, error)
}
