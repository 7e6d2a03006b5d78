package interfaces

import (
	"context"

	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EarningsRepository interface {
	// UpsertDaily folds one settled ride into the driver's daily rollup.
	UpsertDaily(ctx context.Context, driverID primitive.ObjectID, day string, gross, fee, net models.Money) error
	GetByDriverDay(ctx context.Context, driverID primitive.ObjectID, day string) (*models.DriverEarnings, error)
	ListByDriver(ctx context.Context, driverID primitive.ObjectID, fromDay, toDay string) ([]*models.DriverEarnings, error)
}
