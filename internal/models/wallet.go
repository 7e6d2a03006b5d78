package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletTransactionType string

const (
	WalletTransactionDebit  WalletTransactionType = "debit"
	WalletTransactionCredit WalletTransactionType = "credit"
)

type Wallet struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Balance   Money              `json:"balance" bson:"balance"`
	Currency  string             `json:"currency" bson:"currency"`
	IsActive  bool               `json:"is_active" bson:"is_active"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// WalletTransaction is a ledger entry. BalanceAfter is captured at write time
// inside the same transaction as the balance change.
type WalletTransaction struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	WalletID     primitive.ObjectID  `json:"wallet_id" bson:"wallet_id"`
	UserID       primitive.ObjectID  `json:"user_id" bson:"user_id"`
	Type         WalletTransactionType `json:"type" bson:"type"`
	Amount       Money               `json:"amount" bson:"amount"`
	BalanceAfter Money               `json:"balance_after" bson:"balance_after"`
	Reference    string              `json:"reference" bson:"reference"`
	RideID       *primitive.ObjectID `json:"ride_id" bson:"ride_id"`
	Description  string              `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
}
