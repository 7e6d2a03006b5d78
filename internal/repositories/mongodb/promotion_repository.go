package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type promotionRepository struct {
	promos      *mongo.Collection
	redemptions *mongo.Collection
}

func NewPromotionRepository(db *mongo.Database) interfaces.PromotionRepository {
	return &promotionRepository{
		promos:      db.Collection("promo_codes"),
		redemptions: db.Collection("promo_redemptions"),
	}
}

func (r *promotionRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	if promo.ID.IsZero() {
		promo.ID = primitive.NewObjectID()
	}
	promo.Code = strings.ToUpper(promo.Code)
	now := time.Now()
	promo.CreatedAt = now
	promo.UpdatedAt = now

	_, err := r.promos.InsertOne(ctx, promo)
	if err != nil {
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	return nil
}

func (r *promotionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.promos.FindOne(ctx, bson.M{"_id": id}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("promo code")
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}

	return &promo, nil
}

func (r *promotionRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.promos.FindOne(ctx, bson.M{"code": strings.ToUpper(code)}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("promo code")
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}

	return &promo, nil
}

// ConsumeUsage is the promo's concurrency gate: the filter re-checks
// activity, validity and the usage cap so two rides cannot both take the
// last slot.
func (r *promotionRepository) ConsumeUsage(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	filter := bson.M{
		"_id":         id,
		"is_active":   true,
		"valid_from":  bson.M{"$lte": now},
		"valid_until": bson.M{"$gte": now},
		"$expr":       bson.M{"$lt": []interface{}{"$used_count", "$usage_limit"}},
	}

	result, err := r.promos.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"used_count": 1},
		"$set": bson.M{"updated_at": now},
	})
	if err != nil {
		return fmt.Errorf("failed to consume promo usage: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("promo code is no longer available")
	}

	return nil
}

func (r *promotionRepository) ReleaseUsage(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.promos.UpdateOne(
		ctx,
		bson.M{"_id": id, "used_count": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"used_count": -1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to release promo usage: %w", err)
	}

	return nil
}

func (r *promotionRepository) RecordRedemption(ctx context.Context, redemption *models.PromoRedemption) error {
	if redemption.ID.IsZero() {
		redemption.ID = primitive.NewObjectID()
	}
	redemption.CreatedAt = time.Now()

	_, err := r.redemptions.InsertOne(ctx, redemption)
	if err != nil {
		return fmt.Errorf("failed to record promo redemption: %w", err)
	}

	return nil
}

func (r *promotionRepository) CountRedemptions(ctx context.Context, promoID, riderID primitive.ObjectID) (int64, error) {
	count, err := r.redemptions.CountDocuments(ctx, bson.M{
		"promo_id": promoID,
		"rider_id": riderID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count promo redemptions: %w", err)
	}

	return count, nil
}

func (r *promotionRepository) DeleteRedemption(ctx context.Context, promoID, rideID primitive.ObjectID) error {
	_, err := r.redemptions.DeleteOne(ctx, bson.M{
		"promo_id": promoID,
		"ride_id":  rideID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete promo redemption: %w", err)
	}

	return nil
}
