package services

import (
	"context"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromoService interface {
	// Validate checks every applicability rule for a promo code against a
	// fare without consuming anything.
	Validate(ctx context.Context, code string, riderID primitive.ObjectID, fare models.Money, now time.Time) (*models.PromoCode, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error)

	// Consume takes one usage slot and records the redemption. Called inside
	// the ride-creation transaction so the slot is released on rollback.
	Consume(ctx context.Context, promo *models.PromoCode, riderID, rideID primitive.ObjectID, now time.Time) error
	Release(ctx context.Context, promoID, rideID primitive.ObjectID) error
}

type promoService struct {
	promoRepo interfaces.PromotionRepository
}

func NewPromoService(promoRepo interfaces.PromotionRepository) PromoService {
	return &promoService{
		promoRepo: promoRepo,
	}
}

func (s *promoService) Validate(ctx context.Context, code string, riderID primitive.ObjectID, fare models.Money, now time.Time) (*models.PromoCode, error) {
	promo, err := s.promoRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !promo.IsActive {
		return nil, apperrors.Validationf("promo code %s is not active", promo.Code)
	}
	if !promo.WithinValidity(now) {
		return nil, apperrors.Expired("promo code is outside its validity window")
	}
	if promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit {
		return nil, apperrors.Conflict("promo code usage limit reached")
	}
	if promo.MinRideAmount > 0 && fare < promo.MinRideAmount {
		return nil, apperrors.Validationf("ride amount %s is below the promo minimum %s", fare, promo.MinRideAmount)
	}

	if promo.PerUserLimit > 0 {
		used, err := s.promoRepo.CountRedemptions(ctx, promo.ID, riderID)
		if err != nil {
			return nil, err
		}
		if used >= int64(promo.PerUserLimit) {
			return nil, apperrors.Conflict("promo code per-user limit reached")
		}
	}

	return promo, nil
}

func (s *promoService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error) {
	return s.promoRepo.GetByID(ctx, id)
}

func (s *promoService) Consume(ctx context.Context, promo *models.PromoCode, riderID, rideID primitive.ObjectID, now time.Time) error {
	if err := s.promoRepo.ConsumeUsage(ctx, promo.ID, now); err != nil {
		return err
	}

	return s.promoRepo.RecordRedemption(ctx, &models.PromoRedemption{
		PromoID: promo.ID,
		RiderID: riderID,
		RideID:  rideID,
	})
}

func (s *promoService) Release(ctx context.Context, promoID, rideID primitive.ObjectID) error {
	if err := s.promoRepo.ReleaseUsage(ctx, promoID); err != nil {
		return err
	}

	return s.promoRepo.DeleteRedemption(ctx, promoID, rideID)
}
