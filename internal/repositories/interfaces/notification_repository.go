package interfaces

import (
	"context"

	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
}
