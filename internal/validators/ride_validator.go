package validators

import (
	"time"
)

// Fares travel as decimal strings on the wire ("12.50") and are parsed into
// minor units before reaching the services.

type LocationBody struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Address   string  `json:"address" validate:"omitempty,max=255"`
}

type CreateRideBody struct {
	Pickup        LocationBody   `json:"pickup" validate:"required"`
	Dropoff       LocationBody   `json:"dropoff" validate:"required"`
	Stops         []LocationBody `json:"stops" validate:"omitempty,max=5,dive"`
	SeatCount     int            `json:"seat_count" validate:"required,min=1,max=8"`
	Fare          string         `json:"fare" validate:"required"`
	PromoCode     string         `json:"promo_code" validate:"omitempty,max=20"`
	ScheduledTime *time.Time     `json:"scheduled_time" validate:"omitempty"`
}

type AcceptRideBody struct {
	VehicleID string `json:"vehicle_id" validate:"omitempty,object_id"`
}

type CompleteRideBody struct {
	FinalFare        string   `json:"final_fare" validate:"omitempty"`
	ActualDistanceKM *float64 `json:"actual_distance_km" validate:"omitempty,min=0"`
	ActualDurationMin *int    `json:"actual_duration_min" validate:"omitempty,min=0"`
	PaymentMethod    string   `json:"payment_method" validate:"omitempty,oneof=cash card wallet"`
}

type CancelRideBody struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

func ValidateCreateRide(body *CreateRideBody) ValidationErrors {
	errors := ValidateStruct(body)

	if sameCoordinates(body.Pickup, body.Dropoff) {
		errors = append(errors, ValidationError{
			Field:   "dropoff",
			Message: "pickup and dropoff must be different",
		})
	}

	if body.ScheduledTime != nil && body.ScheduledTime.Before(time.Now()) {
		errors = append(errors, ValidationError{
			Field:   "scheduled_time",
			Message: "scheduled time must be in the future",
		})
	}

	return errors
}

func sameCoordinates(a, b LocationBody) bool {
	const eps = 1e-6
	dLat := a.Latitude - b.Latitude
	dLng := a.Longitude - b.Longitude
	if dLat < 0 {
		dLat = -dLat
	}
	if dLng < 0 {
		dLng = -dLng
	}
	return dLat < eps && dLng < eps
}
