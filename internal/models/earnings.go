package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverEarnings is a per-driver, per-calendar-day rollup updated inside the
// ride completion transaction. Day is the UTC date in "2006-01-02" form.
type DriverEarnings struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DriverID    primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	Day         string             `json:"day" bson:"day"`
	RideCount   int                `json:"ride_count" bson:"ride_count"`
	GrossAmount Money              `json:"gross_amount" bson:"gross_amount"`
	PlatformFee Money              `json:"platform_fee" bson:"platform_fee"`
	NetAmount   Money              `json:"net_amount" bson:"net_amount"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// EarningsDay formats an instant as the rollup key.
func EarningsDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
