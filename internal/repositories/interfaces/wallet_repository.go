package interfaces

import (
	"context"

	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)

	// Debit subtracts from the balance only when sufficient funds remain;
	// an insufficient-funds error otherwise. Returns the balance after.
	Debit(ctx context.Context, userID primitive.ObjectID, amount models.Money) (models.Money, error)
	Credit(ctx context.Context, userID primitive.ObjectID, amount models.Money) (models.Money, error)

	RecordTransaction(ctx context.Context, txn *models.WalletTransaction) error
	GetTransactions(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.WalletTransaction, error)
}
