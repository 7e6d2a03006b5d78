package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Driver struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name              string              `json:"name" bson:"name"`
	Phone             string              `json:"phone" bson:"phone"`
	IsActive          bool                `json:"is_active" bson:"is_active"`
	IsVerified        bool                `json:"is_verified" bson:"is_verified"`
	IsOnline          bool                `json:"is_online" bson:"is_online"`
	ActiveRideID      *primitive.ObjectID `json:"active_ride_id" bson:"active_ride_id"`
	CurrentLocation   *Location           `json:"current_location" bson:"current_location"`
	LocationUpdatedAt *time.Time          `json:"location_updated_at" bson:"location_updated_at"`
	Rating            float64             `json:"rating" bson:"rating"`
	TotalRides        int                 `json:"total_rides" bson:"total_rides"`
	TotalEarnings     Money               `json:"total_earnings" bson:"total_earnings"`
	DeviceTokens      []DeviceToken       `json:"device_tokens,omitempty" bson:"device_tokens,omitempty"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`
}

// Dispatchable reports whether the driver can be offered new rides.
func (d *Driver) Dispatchable() bool {
	return d.IsActive && d.IsVerified && d.IsOnline && d.CurrentLocation != nil
}
