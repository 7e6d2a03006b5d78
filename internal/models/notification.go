package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationRideAccepted       NotificationType = "ride_accepted"
	NotificationRideStarted        NotificationType = "ride_started"
	NotificationRideCompleted      NotificationType = "ride_completed"
	NotificationRideCancelled      NotificationType = "ride_cancelled"
	NotificationNegotiationReplied NotificationType = "negotiation_replied"
	NotificationPaymentProcessed   NotificationType = "payment_processed"
)

type DevicePlatform string

const (
	PlatformAndroid DevicePlatform = "android"
	PlatformIOS     DevicePlatform = "ios"
)

type DeviceToken struct {
	Token    string         `json:"token" bson:"token"`
	Platform DevicePlatform `json:"platform" bson:"platform"`
}

type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Type      NotificationType   `json:"type" bson:"type"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Data      map[string]string  `json:"data,omitempty" bson:"data,omitempty"`
	IsRead    bool               `json:"is_read" bson:"is_read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
