package services

import (
	"context"
	"testing"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPaymentFixture(t *testing.T, repo *mockPaymentRepo) PaymentService {
	t.Helper()
	return NewPaymentService(repo, nil, nil, &passTransactor{}, &stubNotifier{}, "USD", testLogger(t))
}

func addPayment(repo *mockPaymentRepo, method models.PaymentMethod, status models.PaymentStatus) *models.Payment {
	pmt := &models.Payment{
		RideID:  primitive.NewObjectID(),
		RiderID: primitive.NewObjectID(),
		Method:  method,
		Status:  status,
		Amount:  1000,
	}
	repo.Create(context.Background(), pmt)
	return pmt
}

func TestProcessCashMarksPaid(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newPaymentFixture(t, repo)
	pmt := addPayment(repo, models.PaymentMethodCash, models.PaymentStatusPending)

	processed, err := svc.Process(context.Background(), pmt.ID)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if processed.Status != models.PaymentStatusPaid {
		t.Errorf("status = %s, want paid", processed.Status)
	}
	if processed.TransactionID == "" {
		t.Error("transaction reference not recorded")
	}
}

func TestProcessRejectsResolvedPayment(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newPaymentFixture(t, repo)
	pmt := addPayment(repo, models.PaymentMethodCash, models.PaymentStatusPaid)

	_, err := svc.Process(context.Background(), pmt.ID)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Errorf("Process error = %v, want conflict", err)
	}
}

func TestProcessCardWithoutGateway(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newPaymentFixture(t, repo)
	pmt := addPayment(repo, models.PaymentMethodCard, models.PaymentStatusPending)

	_, err := svc.Process(context.Background(), pmt.ID)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("Process error = %v, want conflict", err)
	}

	stored, _ := repo.GetByID(context.Background(), pmt.ID)
	if stored.Status != models.PaymentStatusPending {
		t.Errorf("status = %s, want still pending", stored.Status)
	}
}

func TestRefundCardWithoutGateway(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newPaymentFixture(t, repo)
	pmt := addPayment(repo, models.PaymentMethodCard, models.PaymentStatusPaid)

	_, err := svc.Refund(context.Background(), pmt.ID, "rider dispute")
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("Refund error = %v, want conflict", err)
	}

	stored, _ := repo.GetByID(context.Background(), pmt.ID)
	if stored.Status != models.PaymentStatusPaid {
		t.Errorf("status = %s, want still paid", stored.Status)
	}
}

func TestRefundCashMarksRefunded(t *testing.T) {
	repo := newMockPaymentRepo()
	svc := newPaymentFixture(t, repo)
	pmt := addPayment(repo, models.PaymentMethodCash, models.PaymentStatusPaid)

	refunded, err := svc.Refund(context.Background(), pmt.ID, "rider dispute")
	if err != nil {
		t.Fatalf("Refund returned error: %v", err)
	}
	if refunded.Status != models.PaymentStatusRefunded {
		t.Errorf("status = %s, want refunded", refunded.Status)
	}
}
