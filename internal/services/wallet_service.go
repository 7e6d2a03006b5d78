package services

import (
	"context"
	"fmt"

	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"
	"ridelink/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletService interface {
	Balance(ctx context.Context, userID primitive.ObjectID) (models.Money, error)

	// DebitForRide checks and decrements the balance atomically and writes
	// the ledger entry. Insufficient funds abort with no mutation.
	DebitForRide(ctx context.Context, userID primitive.ObjectID, amount models.Money, rideID primitive.ObjectID, description string) (*models.WalletTransaction, error)
	CreditForRide(ctx context.Context, userID primitive.ObjectID, amount models.Money, rideID primitive.ObjectID, description string) (*models.WalletTransaction, error)

	Transactions(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.WalletTransaction, error)
}

type walletService struct {
	walletRepo interfaces.WalletRepository
}

func NewWalletService(walletRepo interfaces.WalletRepository) WalletService {
	return &walletService{
		walletRepo: walletRepo,
	}
}

func (s *walletService) Balance(ctx context.Context, userID primitive.ObjectID) (models.Money, error) {
	wallet, err := s.walletRepo.GetByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	return wallet.Balance, nil
}

func (s *walletService) DebitForRide(ctx context.Context, userID primitive.ObjectID, amount models.Money, rideID primitive.ObjectID, description string) (*models.WalletTransaction, error) {
	return s.apply(ctx, userID, models.WalletTransactionDebit, amount, rideID, description)
}

func (s *walletService) CreditForRide(ctx context.Context, userID primitive.ObjectID, amount models.Money, rideID primitive.ObjectID, description string) (*models.WalletTransaction, error) {
	return s.apply(ctx, userID, models.WalletTransactionCredit, amount, rideID, description)
}

func (s *walletService) Transactions(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.WalletTransaction, error) {
	return s.walletRepo.GetTransactions(ctx, userID, limit)
}

func (s *walletService) apply(ctx context.Context, userID primitive.ObjectID, kind models.WalletTransactionType, amount models.Money, rideID primitive.ObjectID, description string) (*models.WalletTransaction, error) {
	wallet, err := s.walletRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var balanceAfter models.Money
	switch kind {
	case models.WalletTransactionDebit:
		balanceAfter, err = s.walletRepo.Debit(ctx, userID, amount)
	case models.WalletTransactionCredit:
		balanceAfter, err = s.walletRepo.Credit(ctx, userID, amount)
	default:
		return nil, fmt.Errorf("unknown wallet transaction type %q", kind)
	}
	if err != nil {
		return nil, err
	}

	txn := &models.WalletTransaction{
		WalletID:     wallet.ID,
		UserID:       userID,
		Type:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Reference:    utils.GenerateTransactionRef(),
		RideID:       &rideID,
		Description:  description,
	}

	if err := s.walletRepo.RecordTransaction(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}
