package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NegotiationStatus string

const (
	NegotiationStatusPending  NegotiationStatus = "pending"
	NegotiationStatusAccepted NegotiationStatus = "accepted"
	NegotiationStatusRejected NegotiationStatus = "rejected"
	NegotiationStatusExpired  NegotiationStatus = "expired"
)

// Negotiation is a rider-proposed price counter on a pending ride. At most one
// pending, unexpired negotiation exists per ride.
type Negotiation struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID       primitive.ObjectID `json:"ride_id" bson:"ride_id"`
	RiderID      primitive.ObjectID `json:"rider_id" bson:"rider_id"`
	ProposedFare Money              `json:"proposed_fare" bson:"proposed_fare"`
	Status       NegotiationStatus  `json:"status" bson:"status"`
	ExpiresAt    time.Time          `json:"expires_at" bson:"expires_at"`
	RespondedAt  *time.Time         `json:"responded_at" bson:"responded_at"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// ExpiredBy reports whether the window has passed at the given instant.
// Expiry is resolved lazily: the record may still say pending in storage.
func (n *Negotiation) ExpiredBy(now time.Time) bool {
	return now.After(n.ExpiresAt)
}

func (n *Negotiation) Open(now time.Time) bool {
	return n.Status == NegotiationStatusPending && !n.ExpiredBy(now)
}
