package services

import (
	"testing"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/config"
	"ridelink/internal/models"
)

func newFareService(rate float64) FareService {
	return NewFareService(&config.PricingConfig{CommissionRate: rate})
}

func percentagePromo(value float64, maxDiscount models.Money) *models.PromoCode {
	return &models.PromoCode{
		Type:          models.PromoTypePercentage,
		DiscountValue: value,
		MaxDiscount:   maxDiscount,
		IsActive:      true,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(time.Hour),
		UsageLimit:    100,
		PerUserLimit:  5,
	}
}

func TestSettleWithCappedPercentagePromo(t *testing.T) {
	svc := newFareService(0.15)

	// 10.00 fare, 10% promo capped at 0.80: the cap wins over the percentage.
	promo := percentagePromo(10, models.Money(80))
	breakdown, err := svc.Settle(models.Money(1000), promo)
	if err != nil {
		t.Fatalf("Settle returned error: %v", err)
	}

	if breakdown.Discount != 80 {
		t.Errorf("discount = %d, want 80", breakdown.Discount)
	}
	if breakdown.FinalAmount != 920 {
		t.Errorf("final amount = %d, want 920", breakdown.FinalAmount)
	}
	if breakdown.PlatformFee != 138 {
		t.Errorf("platform fee = %d, want 138", breakdown.PlatformFee)
	}
	if breakdown.DriverEarning != 782 {
		t.Errorf("driver earning = %d, want 782", breakdown.DriverEarning)
	}
}

func TestSettleWithoutPromo(t *testing.T) {
	svc := newFareService(0.15)

	breakdown, err := svc.Settle(models.Money(2500), nil)
	if err != nil {
		t.Fatalf("Settle returned error: %v", err)
	}

	if breakdown.Discount != 0 {
		t.Errorf("discount = %d, want 0", breakdown.Discount)
	}
	if breakdown.FinalAmount != 2500 {
		t.Errorf("final amount = %d, want 2500", breakdown.FinalAmount)
	}
	if breakdown.PlatformFee != 375 {
		t.Errorf("platform fee = %d, want 375", breakdown.PlatformFee)
	}
	if breakdown.DriverEarning != 2125 {
		t.Errorf("driver earning = %d, want 2125", breakdown.DriverEarning)
	}
}

func TestSettleRejectsNonPositiveFare(t *testing.T) {
	svc := newFareService(0.15)

	for _, fare := range []models.Money{0, -100} {
		if _, err := svc.Settle(fare, nil); !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Settle(%d) error = %v, want validation error", fare, err)
		}
	}
}

func TestSettleFeePlusEarningEqualsFinal(t *testing.T) {
	// Odd commission rates force rounding; the identity must hold regardless.
	rates := []float64{0.15, 0.1234, 0.3333, 0.07}
	fares := []models.Money{1, 99, 1000, 12345, 999999}

	for _, rate := range rates {
		svc := newFareService(rate)
		for _, fare := range fares {
			breakdown, err := svc.Settle(fare, nil)
			if err != nil {
				t.Fatalf("Settle(%d) at rate %v returned error: %v", fare, rate, err)
			}
			if breakdown.PlatformFee+breakdown.DriverEarning != breakdown.FinalAmount {
				t.Errorf("rate %v fare %d: fee %d + earning %d != final %d",
					rate, fare, breakdown.PlatformFee, breakdown.DriverEarning, breakdown.FinalAmount)
			}
		}
	}
}

func TestQuoteDiscountFixedPromo(t *testing.T) {
	svc := newFareService(0.15)

	promo := &models.PromoCode{
		Type:          models.PromoTypeFixed,
		DiscountValue: 3.50,
	}

	if got := svc.QuoteDiscount(models.Money(1000), promo); got != 350 {
		t.Errorf("fixed discount = %d, want 350", got)
	}

	// A fixed discount larger than the fare clamps to the fare.
	if got := svc.QuoteDiscount(models.Money(200), promo); got != 200 {
		t.Errorf("clamped discount = %d, want 200", got)
	}
}

func TestQuoteDiscountRespectsMinRideAmount(t *testing.T) {
	svc := newFareService(0.15)

	promo := percentagePromo(10, models.Money(500))
	promo.MinRideAmount = models.Money(1000)

	if got := svc.QuoteDiscount(models.Money(900), promo); got != 0 {
		t.Errorf("discount below minimum ride amount = %d, want 0", got)
	}
	if got := svc.QuoteDiscount(models.Money(1000), promo); got != 100 {
		t.Errorf("discount at minimum ride amount = %d, want 100", got)
	}
}

func TestQuoteDiscountNilPromo(t *testing.T) {
	svc := newFareService(0.15)

	if got := svc.QuoteDiscount(models.Money(1000), nil); got != 0 {
		t.Errorf("discount with nil promo = %d, want 0", got)
	}
}
