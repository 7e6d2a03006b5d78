package services

import (
	"context"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"
	"ridelink/internal/utils"
	"ridelink/pkg/logger"
	"ridelink/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentService interface {
	// Process settles a pending payment according to its method. Wallet
	// debits commit atomically with the status flip; insufficient funds
	// abort the whole update.
	Process(ctx context.Context, paymentID primitive.ObjectID) (*models.Payment, error)
	Refund(ctx context.Context, paymentID primitive.ObjectID, reason string) (*models.Payment, error)
	GetByRide(ctx context.Context, rideID primitive.ObjectID) (*models.Payment, error)
}

type paymentService struct {
	paymentRepo   interfaces.PaymentRepository
	walletService WalletService
	gateway       payment.PaymentProvider
	transactor    interfaces.Transactor
	notifications NotificationService
	currency      string
	log           *logger.Logger
}

func NewPaymentService(
	paymentRepo interfaces.PaymentRepository,
	walletService WalletService,
	gateway payment.PaymentProvider,
	transactor interfaces.Transactor,
	notifications NotificationService,
	currency string,
	log *logger.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo:   paymentRepo,
		walletService: walletService,
		gateway:       gateway,
		transactor:    transactor,
		notifications: notifications,
		currency:      currency,
		log:           log,
	}
}

func (s *paymentService) Process(ctx context.Context, paymentID primitive.ObjectID) (*models.Payment, error) {
	pmt, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if pmt.Status != models.PaymentStatusPending {
		return nil, apperrors.Conflict("payment has already been processed")
	}

	now := time.Now()

	switch pmt.Method {
	case models.PaymentMethodCash:
		if err := s.paymentRepo.MarkPaid(ctx, pmt.ID, utils.GenerateTransactionRef(), now); err != nil {
			return nil, err
		}

	case models.PaymentMethodWallet:
		err := s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
			txn, err := s.walletService.DebitForRide(ctx, pmt.RiderID, pmt.Amount, pmt.RideID, "ride fare")
			if err != nil {
				return err
			}
			return s.paymentRepo.MarkPaid(ctx, pmt.ID, txn.Reference, now)
		})
		if err != nil {
			return nil, err
		}

	case models.PaymentMethodCard:
		if s.gateway == nil {
			return nil, apperrors.Conflict("no payment gateway configured")
		}
		resp, err := s.gateway.ProcessPayment(ctx, &payment.PaymentRequest{
			PaymentMethodID: pmt.TransactionID,
			Amount:          int64(pmt.Amount),
			Currency:        s.currency,
			Description:     "ride fare",
			CustomerID:      pmt.RiderID.Hex(),
			Metadata:        map[string]string{"ride_id": pmt.RideID.Hex()},
		})
		if err != nil {
			if markErr := s.paymentRepo.MarkFailed(ctx, pmt.ID, err.Error()); markErr != nil {
				s.log.WithError(markErr).Error("payment: failed to record gateway failure")
			}
			return nil, apperrors.Wrap(apperrors.KindInternal, "card charge failed", err)
		}
		if err := s.paymentRepo.MarkPaid(ctx, pmt.ID, resp.TransactionID, now); err != nil {
			return nil, err
		}

	default:
		return nil, apperrors.Validationf("unsupported payment method %q", pmt.Method)
	}

	updated, err := s.paymentRepo.GetByID(ctx, pmt.ID)
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyRider(ctx, pmt.RiderID, models.NotificationPaymentProcessed,
		"Payment processed",
		"Your payment of "+pmt.Amount.String()+" has been processed",
		map[string]string{"ride_id": pmt.RideID.Hex(), "payment_id": pmt.ID.Hex()})

	s.log.LogPaymentEvent(pmt.ID, "processed", pmt.Amount.String(), s.currency)

	return updated, nil
}

func (s *paymentService) Refund(ctx context.Context, paymentID primitive.ObjectID, reason string) (*models.Payment, error) {
	pmt, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if pmt.Status != models.PaymentStatusPaid {
		return nil, apperrors.Conflict("only paid payments can be refunded")
	}

	now := time.Now()

	switch pmt.Method {
	case models.PaymentMethodWallet:
		err := s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
			if _, err := s.walletService.CreditForRide(ctx, pmt.RiderID, pmt.Amount, pmt.RideID, "ride refund: "+reason); err != nil {
				return err
			}
			return s.paymentRepo.MarkRefunded(ctx, pmt.ID, now)
		})
		if err != nil {
			return nil, err
		}

	case models.PaymentMethodCard:
		if s.gateway == nil {
			return nil, apperrors.Conflict("no payment gateway configured")
		}
		_, err := s.gateway.RefundPayment(ctx, &payment.RefundRequest{
			TransactionID: pmt.TransactionID,
			Amount:        int64(pmt.Amount),
			Reason:        reason,
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "card refund failed", err)
		}
		if err := s.paymentRepo.MarkRefunded(ctx, pmt.ID, now); err != nil {
			return nil, err
		}

	case models.PaymentMethodCash:
		if err := s.paymentRepo.MarkRefunded(ctx, pmt.ID, now); err != nil {
			return nil, err
		}

	default:
		return nil, apperrors.Validationf("unsupported payment method %q", pmt.Method)
	}

	s.log.LogPaymentEvent(pmt.ID, "refunded", pmt.Amount.String(), s.currency)

	return s.paymentRepo.GetByID(ctx, pmt.ID)
}

func (s *paymentService) GetByRide(ctx context.Context, rideID primitive.ObjectID) (*models.Payment, error) {
	return s.paymentRepo.GetByRide(ctx, rideID)
}
