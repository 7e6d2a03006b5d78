package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string
type CancelActor string

const (
	RideStatusPending    RideStatus = "pending"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"

	CancelActorRider  CancelActor = "rider"
	CancelActorDriver CancelActor = "driver"
)

const (
	MinSeatCount = 1
	MaxSeatCount = 8
)

type Ride struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RideNumber     string              `json:"ride_number" bson:"ride_number"`
	RiderID        primitive.ObjectID  `json:"rider_id" bson:"rider_id"`
	DriverID       *primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	VehicleID      *primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id"`
	Status         RideStatus          `json:"status" bson:"status"`
	Pickup         Location            `json:"pickup" bson:"pickup"`
	Dropoff        Location            `json:"dropoff" bson:"dropoff"`
	Stops          []Location          `json:"stops,omitempty" bson:"stops,omitempty"`
	SeatCount      int                 `json:"seat_count" bson:"seat_count"`
	OriginalFare   Money               `json:"original_fare" bson:"original_fare"`
	NegotiatedFare *Money              `json:"negotiated_fare" bson:"negotiated_fare"`
	FinalFare      *Money              `json:"final_fare" bson:"final_fare"`
	PromoID        *primitive.ObjectID `json:"promo_id" bson:"promo_id"`
	PromoCode      string              `json:"promo_code,omitempty" bson:"promo_code,omitempty"`
	ScheduledTime  *time.Time          `json:"scheduled_time" bson:"scheduled_time"`

	EstimatedDistanceKM float64 `json:"estimated_distance_km" bson:"estimated_distance_km"`
	EstimatedDurationMin int    `json:"estimated_duration_min" bson:"estimated_duration_min"`
	ActualDistanceKM    float64 `json:"actual_distance_km" bson:"actual_distance_km"`
	ActualDurationMin   int     `json:"actual_duration_min" bson:"actual_duration_min"`

	PaymentID *primitive.ObjectID `json:"payment_id" bson:"payment_id"`

	RequestedAt  time.Time   `json:"requested_at" bson:"requested_at"`
	AcceptedAt   *time.Time  `json:"accepted_at" bson:"accepted_at"`
	StartedAt    *time.Time  `json:"started_at" bson:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at" bson:"completed_at"`
	CancelledAt  *time.Time  `json:"cancelled_at" bson:"cancelled_at"`
	CancelledBy  CancelActor `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CancelReason string      `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (s RideStatus) Active() bool {
	return s == RideStatusPending || s == RideStatusAccepted || s == RideStatusInProgress
}

func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// RiderActiveStatuses are the statuses that count against a rider's
// one-active-ride limit.
func RiderActiveStatuses() []RideStatus {
	return []RideStatus{RideStatusPending, RideStatusAccepted, RideStatusInProgress}
}

// DriverActiveStatuses are the statuses that count against a driver's
// one-active-ride limit.
func DriverActiveStatuses() []RideStatus {
	return []RideStatus{RideStatusAccepted, RideStatusInProgress}
}

// AgreedFare is the fare the parties settled on before completion: the
// negotiated price when one was accepted, otherwise the rider's original offer.
func (r *Ride) AgreedFare() Money {
	if r.NegotiatedFare != nil {
		return *r.NegotiatedFare
	}
	return r.OriginalFare
}
