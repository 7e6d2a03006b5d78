package services

import (
	"ridelink/internal/apperrors"
	"ridelink/internal/config"
	"ridelink/internal/models"

	"github.com/shopspring/decimal"
)

// FareBreakdown is the outcome of settling a ride. PlatformFee plus
// DriverEarning always equals FinalAmount exactly.
type FareBreakdown struct {
	BaseFare      models.Money `json:"base_fare"`
	Discount      models.Money `json:"discount"`
	FinalAmount   models.Money `json:"final_amount"`
	PlatformFee   models.Money `json:"platform_fee"`
	DriverEarning models.Money `json:"driver_earning"`
}

// FareService performs the settlement arithmetic. It is pure: no storage, no
// clock, deterministic for a given input.
type FareService interface {
	Settle(baseFare models.Money, promo *models.PromoCode) (*FareBreakdown, error)
	QuoteDiscount(fare models.Money, promo *models.PromoCode) models.Money
}

type fareService struct {
	commissionRate decimal.Decimal
}

func NewFareService(cfg *config.PricingConfig) FareService {
	return &fareService{
		commissionRate: decimal.NewFromFloat(cfg.CommissionRate),
	}
}

func (s *fareService) Settle(baseFare models.Money, promo *models.PromoCode) (*FareBreakdown, error) {
	if !baseFare.IsPositive() {
		return nil, apperrors.Validationf("fare must be positive, got %s", baseFare)
	}

	discount := s.QuoteDiscount(baseFare, promo)

	finalAmount := baseFare - discount
	if finalAmount < 0 {
		finalAmount = 0
	}

	// The fee is rounded to a whole minor unit; the earning is the remainder,
	// so the two always sum back to the final amount.
	platformFee := models.MoneyFromDecimal(finalAmount.Decimal().Mul(s.commissionRate))
	driverEarning := finalAmount - platformFee

	return &FareBreakdown{
		BaseFare:      baseFare,
		Discount:      discount,
		FinalAmount:   finalAmount,
		PlatformFee:   platformFee,
		DriverEarning: driverEarning,
	}, nil
}

// QuoteDiscount computes the discount a promo would apply to a fare without
// consuming anything. Zero when the promo does not apply.
func (s *fareService) QuoteDiscount(fare models.Money, promo *models.PromoCode) models.Money {
	if promo == nil || !fare.IsPositive() {
		return 0
	}
	if promo.MinRideAmount > 0 && fare < promo.MinRideAmount {
		return 0
	}

	var discount models.Money
	switch promo.Type {
	case models.PromoTypePercentage:
		pct := decimal.NewFromFloat(promo.DiscountValue).Div(decimal.NewFromInt(100))
		discount = models.MoneyFromDecimal(fare.Decimal().Mul(pct))
	case models.PromoTypeFixed:
		discount = models.MoneyFromFloat(promo.DiscountValue)
	default:
		return 0
	}

	if promo.MaxDiscount > 0 && discount > promo.MaxDiscount {
		discount = promo.MaxDiscount
	}
	if discount > fare {
		discount = fare
	}
	if discount < 0 {
		discount = 0
	}

	return discount
}
