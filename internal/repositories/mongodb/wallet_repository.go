package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type walletRepository struct {
	wallets      *mongo.Collection
	transactions *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) interfaces.WalletRepository {
	return &walletRepository{
		wallets:      db.Collection("wallets"),
		transactions: db.Collection("wallet_transactions"),
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID.IsZero() {
		wallet.ID = primitive.NewObjectID()
	}
	now := time.Now()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now

	_, err := r.wallets.InsertOne(ctx, wallet)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

func (r *walletRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.wallets.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wallet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("wallet")
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// Debit requires the balance to cover the amount in the update filter, so a
// concurrent debit can never drive the balance negative.
func (r *walletRepository) Debit(ctx context.Context, userID primitive.ObjectID, amount models.Money) (models.Money, error) {
	filter := bson.M{
		"user_id":   userID,
		"is_active": true,
		"balance":   bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"balance": -amount},
		"$set": bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.wallets.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wallet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperrors.InsufficientFunds("wallet balance is too low")
		}
		return 0, fmt.Errorf("failed to debit wallet: %w", err)
	}

	return wallet.Balance, nil
}

func (r *walletRepository) Credit(ctx context.Context, userID primitive.ObjectID, amount models.Money) (models.Money, error) {
	filter := bson.M{
		"user_id":   userID,
		"is_active": true,
	}
	update := bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wallet models.Wallet
	err := r.wallets.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wallet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperrors.NotFound("wallet")
		}
		return 0, fmt.Errorf("failed to credit wallet: %w", err)
	}

	return wallet.Balance, nil
}

func (r *walletRepository) RecordTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	if txn.ID.IsZero() {
		txn.ID = primitive.NewObjectID()
	}
	txn.CreatedAt = time.Now()

	_, err := r.transactions.InsertOne(ctx, txn)
	if err != nil {
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}

	return nil
}

func (r *walletRepository) GetTransactions(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.WalletTransaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.transactions.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*models.WalletTransaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode wallet transactions: %w", err)
	}

	return txns, nil
}
