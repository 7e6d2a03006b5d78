package interfaces

import (
	"context"
	"time"

	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromotionRepository interface {
	Create(ctx context.Context, promo *models.PromoCode) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error)
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)

	// ConsumeUsage increments used_count only while the code is active,
	// within validity and under its global cap. Returns a conflict when the
	// increment loses the race.
	ConsumeUsage(ctx context.Context, id primitive.ObjectID, now time.Time) error
	ReleaseUsage(ctx context.Context, id primitive.ObjectID) error

	RecordRedemption(ctx context.Context, redemption *models.PromoRedemption) error
	CountRedemptions(ctx context.Context, promoID, riderID primitive.ObjectID) (int64, error)
	DeleteRedemption(ctx context.Context, promoID, rideID primitive.ObjectID) error
}
