package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxRecentLocations = 10

type Rider struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name            string              `json:"name" bson:"name"`
	Phone           string              `json:"phone" bson:"phone"`
	IsActive        bool                `json:"is_active" bson:"is_active"`
	ActiveRideID    *primitive.ObjectID `json:"active_ride_id" bson:"active_ride_id"`
	TotalRides      int                 `json:"total_rides" bson:"total_rides"`
	RecentLocations []Location          `json:"recent_locations,omitempty" bson:"recent_locations,omitempty"`
	DeviceTokens    []DeviceToken       `json:"device_tokens,omitempty" bson:"device_tokens,omitempty"`
	LastActiveAt    *time.Time          `json:"last_active_at" bson:"last_active_at"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
}
