package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vehicle struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DriverID    primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	Make        string             `json:"make" bson:"make"`
	Model       string             `json:"model" bson:"model"`
	Color       string             `json:"color" bson:"color"`
	PlateNumber string             `json:"plate_number" bson:"plate_number"`
	SeatCount   int                `json:"seat_count" bson:"seat_count"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	IsVerified  bool               `json:"is_verified" bson:"is_verified"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

func (v *Vehicle) Usable() bool {
	return v.IsActive && v.IsVerified
}
