package services

import (
	"context"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/config"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"
	"ridelink/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NegotiationService interface {
	// Propose opens a counter-offer on a pending ride. At most one open
	// negotiation may exist per ride.
	Propose(ctx context.Context, rideID, riderID primitive.ObjectID, proposedFare models.Money) (*models.Negotiation, error)

	// Respond resolves an open negotiation. Accepting writes the negotiated
	// fare onto the ride; the ride's status is untouched either way.
	Respond(ctx context.Context, negotiationID, driverID primitive.ObjectID, accept bool) (*models.Negotiation, error)

	ListForRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Negotiation, error)
}

type negotiationService struct {
	negotiationRepo interfaces.NegotiationRepository
	rideRepo        interfaces.RideRepository
	driverRepo      interfaces.DriverRepository
	transactor      interfaces.Transactor
	notifications   NotificationService
	window          time.Duration
	log             *logger.Logger
}

func NewNegotiationService(
	negotiationRepo interfaces.NegotiationRepository,
	rideRepo interfaces.RideRepository,
	driverRepo interfaces.DriverRepository,
	transactor interfaces.Transactor,
	notifications NotificationService,
	pricing *config.PricingConfig,
	log *logger.Logger,
) NegotiationService {
	return &negotiationService{
		negotiationRepo: negotiationRepo,
		rideRepo:        rideRepo,
		driverRepo:      driverRepo,
		transactor:      transactor,
		notifications:   notifications,
		window:          pricing.NegotiationWindow,
		log:             log,
	}
}

func (s *negotiationService) Propose(ctx context.Context, rideID, riderID primitive.ObjectID, proposedFare models.Money) (*models.Negotiation, error) {
	if !proposedFare.IsPositive() {
		return nil, apperrors.Validationf("proposed fare must be positive, got %s", proposedFare)
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, apperrors.Forbidden("only the ride's rider can propose a fare")
	}
	if ride.Status != models.RideStatusPending {
		return nil, apperrors.InvalidTransition(string(ride.Status), "negotiate")
	}

	now := time.Now()
	open, err := s.resolveOpen(ctx, rideID, now)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, apperrors.Conflict("a negotiation is already pending for this ride")
	}

	negotiation := &models.Negotiation{
		RideID:       rideID,
		RiderID:      riderID,
		ProposedFare: proposedFare,
		Status:       models.NegotiationStatusPending,
		ExpiresAt:    now.Add(s.window),
	}

	if err := s.negotiationRepo.Create(ctx, negotiation); err != nil {
		return nil, err
	}

	s.log.WithRideID(rideID).WithField("proposed_fare", proposedFare.String()).Info("negotiation proposed")

	return negotiation, nil
}

func (s *negotiationService) Respond(ctx context.Context, negotiationID, driverID primitive.ObjectID, accept bool) (*models.Negotiation, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.Dispatchable() {
		return nil, apperrors.Forbidden("driver is not available for dispatch")
	}

	negotiation, err := s.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if negotiation.Status == models.NegotiationStatusPending && negotiation.ExpiredBy(now) {
		if err := s.negotiationRepo.MarkExpired(ctx, []primitive.ObjectID{negotiation.ID}, now); err != nil {
			s.log.WithError(err).WithRideID(negotiation.RideID).Warn("negotiation: failed to mark expired")
		}
		return nil, apperrors.Expired("negotiation window has passed")
	}
	if negotiation.Status != models.NegotiationStatusPending {
		return nil, apperrors.Conflict("negotiation has already been resolved")
	}

	status := models.NegotiationStatusRejected
	if accept {
		status = models.NegotiationStatusAccepted
	}

	var resolved *models.Negotiation
	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if accept {
			// The ride must still be pending for the price to change; the
			// conditional update enforces it.
			if err := s.rideRepo.SetNegotiatedFare(ctx, negotiation.RideID, negotiation.ProposedFare); err != nil {
				return err
			}
		}

		var err error
		resolved, err = s.negotiationRepo.Respond(ctx, negotiation.ID, status, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	verdict := "rejected"
	if accept {
		verdict = "accepted"
	}
	s.notifications.NotifyRider(ctx, negotiation.RiderID, models.NotificationNegotiationReplied,
		"Fare proposal "+verdict,
		"The driver has "+verdict+" your proposed fare of "+negotiation.ProposedFare.String(),
		map[string]string{
			"ride_id":        negotiation.RideID.Hex(),
			"negotiation_id": negotiation.ID.Hex(),
			"status":         string(status),
		})

	s.log.WithRideID(negotiation.RideID).WithUserID(driverID).WithField("status", string(status)).Info("negotiation resolved")

	return resolved, nil
}

func (s *negotiationService) ListForRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Negotiation, error) {
	negotiations, err := s.negotiationRepo.GetByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	// Resolve lazy expiry so callers never see a stale pending record.
	now := time.Now()
	var expired []primitive.ObjectID
	for _, n := range negotiations {
		if n.Status == models.NegotiationStatusPending && n.ExpiredBy(now) {
			n.Status = models.NegotiationStatusExpired
			expired = append(expired, n.ID)
		}
	}
	if len(expired) > 0 {
		if err := s.negotiationRepo.MarkExpired(ctx, expired, now); err != nil {
			s.log.WithError(err).WithRideID(rideID).Warn("negotiation: failed to mark expired")
		}
	}

	return negotiations, nil
}

func (s *negotiationService) resolveOpen(ctx context.Context, rideID primitive.ObjectID, now time.Time) (*models.Negotiation, error) {
	pending, err := s.negotiationRepo.GetOpenByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	var open *models.Negotiation
	var expired []primitive.ObjectID
	for _, n := range pending {
		if n.ExpiredBy(now) {
			expired = append(expired, n.ID)
			continue
		}
		open = n
	}

	if len(expired) > 0 {
		if err := s.negotiationRepo.MarkExpired(ctx, expired, now); err != nil {
			s.log.WithError(err).WithRideID(rideID).Warn("negotiation: failed to mark expired")
		}
	}

	return open, nil
}
