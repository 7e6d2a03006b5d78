package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateRideNumber returns a short human-readable ride reference.
func GenerateRideNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("RL-%s", id[:10])
}

// GenerateTransactionRef returns a ledger reference for wallet movements.
func GenerateTransactionRef() string {
	return fmt.Sprintf("txn_%s", uuid.NewString())
}
