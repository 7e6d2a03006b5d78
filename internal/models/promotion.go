package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromoType string

const (
	PromoTypePercentage PromoType = "percentage"
	PromoTypeFixed      PromoType = "fixed"
)

// PromoCode is owned by the promotions collaborator. The ride engine reads it
// and increments usage counters; everything else is managed elsewhere.
type PromoCode struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code          string             `json:"code" bson:"code"`
	Type          PromoType          `json:"type" bson:"type"`
	DiscountValue float64            `json:"discount_value" bson:"discount_value"`
	MaxDiscount   Money              `json:"max_discount" bson:"max_discount"`
	MinRideAmount Money              `json:"min_ride_amount" bson:"min_ride_amount"`
	UsageLimit    int                `json:"usage_limit" bson:"usage_limit"`
	PerUserLimit  int                `json:"per_user_limit" bson:"per_user_limit"`
	UsedCount     int                `json:"used_count" bson:"used_count"`
	ValidFrom     time.Time          `json:"valid_from" bson:"valid_from"`
	ValidUntil    time.Time          `json:"valid_until" bson:"valid_until"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

func (p *PromoCode) WithinValidity(now time.Time) bool {
	return !now.Before(p.ValidFrom) && !now.After(p.ValidUntil)
}

// PromoRedemption links a consumed promo to the ride it was used on; per-user
// limits are counted over these records.
type PromoRedemption struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PromoID   primitive.ObjectID `json:"promo_id" bson:"promo_id"`
	RiderID   primitive.ObjectID `json:"rider_id" bson:"rider_id"`
	RideID    primitive.ObjectID `json:"ride_id" bson:"ride_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
