package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string
type PaymentMethod string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Payment is the settlement record created once per completed ride.
// PlatformFee + DriverEarning == Amount by construction.
type Payment struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RideID        primitive.ObjectID  `json:"ride_id" bson:"ride_id"`
	RiderID       primitive.ObjectID  `json:"rider_id" bson:"rider_id"`
	DriverID      primitive.ObjectID  `json:"driver_id" bson:"driver_id"`
	Method        PaymentMethod       `json:"method" bson:"method"`
	Status        PaymentStatus       `json:"status" bson:"status"`
	Amount        Money               `json:"amount" bson:"amount"`
	Discount      Money               `json:"discount" bson:"discount"`
	PlatformFee   Money               `json:"platform_fee" bson:"platform_fee"`
	DriverEarning Money               `json:"driver_earning" bson:"driver_earning"`
	PromoID       *primitive.ObjectID `json:"promo_id" bson:"promo_id"`
	PromoCode     string              `json:"promo_code,omitempty" bson:"promo_code,omitempty"`
	Currency      string              `json:"currency" bson:"currency"`
	TransactionID string              `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	FailureReason string              `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	ProcessedAt   *time.Time          `json:"processed_at" bson:"processed_at"`
	RefundedAt    *time.Time          `json:"refunded_at" bson:"refunded_at"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodWallet:
		return true
	}
	return false
}
