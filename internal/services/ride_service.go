package services

import (
	"context"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"
	"ridelink/internal/utils"
	"ridelink/pkg/cache"
	"ridelink/pkg/logger"
	"ridelink/pkg/maps"
	"ridelink/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request types carry one operation each so the state machine's inputs are
// checked at compile time rather than through loosely typed update maps.

type CreateRideRequest struct {
	RiderID       primitive.ObjectID
	PickupLat     float64
	PickupLng     float64
	PickupAddress string
	DropLat       float64
	DropLng       float64
	DropAddress   string
	Stops         []models.Location
	SeatCount     int
	Fare          models.Money
	PromoCode     string
	ScheduledTime *time.Time
}

type CreateRideResponse struct {
	Ride           *models.Ride `json:"ride"`
	Discount       models.Money `json:"discount"`
	EstimatedTotal models.Money `json:"estimated_total"`
}

type AcceptRideRequest struct {
	RideID    primitive.ObjectID
	DriverID  primitive.ObjectID
	VehicleID *primitive.ObjectID
}

type StartRideRequest struct {
	RideID   primitive.ObjectID
	DriverID primitive.ObjectID
}

type CompleteRideRequest struct {
	RideID            primitive.ObjectID
	DriverID          primitive.ObjectID
	FinalFare         *models.Money
	ActualDistanceKM  *float64
	ActualDurationMin *int
	PaymentMethod     models.PaymentMethod
}

type CancelRideRequest struct {
	RideID  primitive.ObjectID
	ActorID primitive.ObjectID
	Actor   models.CancelActor
	Reason  string
}

type ListRidesRequest struct {
	RiderID  *primitive.ObjectID
	DriverID *primitive.ObjectID
	Status   *models.RideStatus
	From     *time.Time
	To       *time.Time
	Params   *utils.PaginationParams
}

type RideService interface {
	Create(ctx context.Context, req *CreateRideRequest) (*CreateRideResponse, error)
	Accept(ctx context.Context, req *AcceptRideRequest) (*models.Ride, error)
	Start(ctx context.Context, req *StartRideRequest) (*models.Ride, error)
	Complete(ctx context.Context, req *CompleteRideRequest) (*models.Ride, error)
	Cancel(ctx context.Context, req *CancelRideRequest) (*models.Ride, error)
	Get(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error)
	List(ctx context.Context, req *ListRidesRequest) ([]*models.Ride, int64, error)
}

type rideService struct {
	rideRepo        interfaces.RideRepository
	riderRepo       interfaces.RiderRepository
	driverRepo      interfaces.DriverRepository
	vehicleRepo     interfaces.VehicleRepository
	negotiationRepo interfaces.NegotiationRepository
	paymentRepo     interfaces.PaymentRepository
	earningsRepo    interfaces.EarningsRepository
	fareService     FareService
	promoService    PromoService
	notifications   NotificationService
	transactor      interfaces.Transactor
	mapsProvider    maps.MapsProvider
	cache           *cache.RedisCache
	wsHandler       *websocket.Handler
	currency        string
	log             *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	riderRepo interfaces.RiderRepository,
	driverRepo interfaces.DriverRepository,
	vehicleRepo interfaces.VehicleRepository,
	negotiationRepo interfaces.NegotiationRepository,
	paymentRepo interfaces.PaymentRepository,
	earningsRepo interfaces.EarningsRepository,
	fareService FareService,
	promoService PromoService,
	notifications NotificationService,
	transactor interfaces.Transactor,
	mapsProvider maps.MapsProvider,
	redisCache *cache.RedisCache,
	wsHandler *websocket.Handler,
	currency string,
	log *logger.Logger,
) RideService {
	return &rideService{
		rideRepo:        rideRepo,
		riderRepo:       riderRepo,
		driverRepo:      driverRepo,
		vehicleRepo:     vehicleRepo,
		negotiationRepo: negotiationRepo,
		paymentRepo:     paymentRepo,
		earningsRepo:    earningsRepo,
		fareService:     fareService,
		promoService:    promoService,
		notifications:   notifications,
		transactor:      transactor,
		mapsProvider:    mapsProvider,
		cache:           redisCache,
		wsHandler:       wsHandler,
		currency:        currency,
		log:             log,
	}
}

func (s *rideService) Create(ctx context.Context, req *CreateRideRequest) (*CreateRideResponse, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	rider, err := s.riderRepo.GetByID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}
	if !rider.IsActive {
		return nil, apperrors.Forbidden("rider account is not active")
	}
	if rider.ActiveRideID != nil {
		return nil, apperrors.Conflict("rider already has an active ride")
	}

	now := time.Now()

	var promo *models.PromoCode
	var discount models.Money
	if req.PromoCode != "" {
		promo, err = s.promoService.Validate(ctx, req.PromoCode, req.RiderID, req.Fare, now)
		if err != nil {
			return nil, err
		}
		discount = s.fareService.QuoteDiscount(req.Fare, promo)
	}

	pickup := models.NewLocation(req.PickupLat, req.PickupLng, req.PickupAddress)
	dropoff := models.NewLocation(req.DropLat, req.DropLng, req.DropAddress)

	distanceKM, durationMin := s.estimateRoute(ctx, req)

	ride := &models.Ride{
		RideNumber:           utils.GenerateRideNumber(),
		RiderID:              req.RiderID,
		Status:               models.RideStatusPending,
		Pickup:               pickup,
		Dropoff:              dropoff,
		Stops:                req.Stops,
		SeatCount:            req.SeatCount,
		OriginalFare:         req.Fare,
		ScheduledTime:        req.ScheduledTime,
		EstimatedDistanceKM:  distanceKM,
		EstimatedDurationMin: durationMin,
		RequestedAt:          now,
	}
	if promo != nil {
		ride.PromoID = &promo.ID
		ride.PromoCode = promo.Code
	}

	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.rideRepo.Create(ctx, ride); err != nil {
			return err
		}
		if err := s.riderRepo.BindActiveRide(ctx, req.RiderID, ride.ID); err != nil {
			return err
		}
		if promo != nil {
			return s.promoService.Consume(ctx, promo, req.RiderID, ride.ID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort side effects after commit.
	for _, loc := range []models.Location{pickup, dropoff} {
		loc.Timestamp = now
		if err := s.riderRepo.AddRecentLocation(ctx, req.RiderID, &loc); err != nil {
			s.log.WithError(err).WithUserID(req.RiderID).Warn("ride: failed to record recent location")
		}
	}
	s.cacheRide(ctx, ride)
	s.publishRideEvent(ride, "ride_created")

	s.log.LogRideEvent(ride.ID, "created", map[string]interface{}{
		"rider_id": req.RiderID.Hex(),
		"fare":     req.Fare.String(),
	})

	return &CreateRideResponse{
		Ride:           ride,
		Discount:       discount,
		EstimatedTotal: req.Fare - discount,
	}, nil
}

func (s *rideService) Accept(ctx context.Context, req *AcceptRideRequest) (*models.Ride, error) {
	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.Dispatchable() {
		return nil, apperrors.Forbidden("driver is not available for dispatch")
	}
	if driver.ActiveRideID != nil {
		return nil, apperrors.Conflict("driver already has an active ride")
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != models.RideStatusPending {
		return nil, apperrors.InvalidTransition(string(ride.Status), "accept")
	}

	vehicle, err := s.resolveVehicle(ctx, req, ride.SeatCount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var accepted *models.Ride
	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		// Conditional update on pending status: of two concurrent accepts,
		// exactly one matches the document.
		accepted, err = s.rideRepo.AcceptPending(ctx, req.RideID, req.DriverID, vehicle.ID, now)
		if err != nil {
			return err
		}
		return s.driverRepo.BindActiveRide(ctx, req.DriverID, req.RideID)
	})
	if err != nil {
		return nil, err
	}

	s.cacheRide(ctx, accepted)
	s.publishRideEvent(accepted, "ride_accepted")
	s.notifications.NotifyRider(ctx, accepted.RiderID, models.NotificationRideAccepted,
		"Driver on the way",
		driver.Name+" has accepted your ride",
		map[string]string{"ride_id": accepted.ID.Hex(), "driver_id": req.DriverID.Hex()})

	s.log.LogRideEvent(accepted.ID, "accepted", map[string]interface{}{
		"driver_id":  req.DriverID.Hex(),
		"vehicle_id": vehicle.ID.Hex(),
	})

	return accepted, nil
}

func (s *rideService) Start(ctx context.Context, req *StartRideRequest) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID == nil || *ride.DriverID != req.DriverID {
		return nil, apperrors.Forbidden("only the assigned driver can start the ride")
	}
	if ride.Status != models.RideStatusAccepted {
		return nil, apperrors.InvalidTransition(string(ride.Status), "start")
	}

	started, err := s.rideRepo.Start(ctx, req.RideID, time.Now())
	if err != nil {
		return nil, err
	}

	s.cacheRide(ctx, started)
	s.publishRideEvent(started, "ride_started")
	s.notifications.NotifyRider(ctx, started.RiderID, models.NotificationRideStarted,
		"Ride started",
		"Your ride is now in progress",
		map[string]string{"ride_id": started.ID.Hex()})

	s.log.LogRideEvent(started.ID, "started", nil)

	return started, nil
}

func (s *rideService) Complete(ctx context.Context, req *CompleteRideRequest) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID == nil || *ride.DriverID != req.DriverID {
		return nil, apperrors.Forbidden("only the assigned driver can complete the ride")
	}
	if ride.Status != models.RideStatusInProgress {
		return nil, apperrors.InvalidTransition(string(ride.Status), "complete")
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !models.ValidPaymentMethod(method) {
		return nil, apperrors.Validationf("unsupported payment method %q", method)
	}

	baseFare := ride.AgreedFare()
	if req.FinalFare != nil {
		baseFare = *req.FinalFare
	}

	var promo *models.PromoCode
	if ride.PromoID != nil {
		promo, err = s.promoService.GetByID(ctx, *ride.PromoID)
		if err != nil {
			return nil, err
		}
	}

	breakdown, err := s.fareService.Settle(baseFare, promo)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	distance := ride.EstimatedDistanceKM
	if req.ActualDistanceKM != nil {
		distance = *req.ActualDistanceKM
	}
	duration := ride.EstimatedDurationMin
	if req.ActualDurationMin != nil {
		duration = *req.ActualDurationMin
	}

	pmt := &models.Payment{
		ID:            primitive.NewObjectID(),
		RideID:        ride.ID,
		RiderID:       ride.RiderID,
		DriverID:      req.DriverID,
		Method:        method,
		Status:        models.PaymentStatusPending,
		Amount:        breakdown.FinalAmount,
		Discount:      breakdown.Discount,
		PlatformFee:   breakdown.PlatformFee,
		DriverEarning: breakdown.DriverEarning,
		PromoID:       ride.PromoID,
		PromoCode:     ride.PromoCode,
		Currency:      s.currency,
	}

	var completed *models.Ride
	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		completed, err = s.rideRepo.Complete(ctx, ride.ID, &interfaces.RideCompletion{
			FinalFare:      breakdown.FinalAmount,
			ActualDistance: distance,
			ActualDuration: duration,
			PaymentID:      pmt.ID,
			CompletedAt:    now,
		})
		if err != nil {
			return err
		}
		if err := s.paymentRepo.Create(ctx, pmt); err != nil {
			return err
		}
		if err := s.riderRepo.IncrementRideCount(ctx, ride.RiderID); err != nil {
			return err
		}
		if err := s.riderRepo.ClearActiveRide(ctx, ride.RiderID, ride.ID); err != nil {
			return err
		}
		if err := s.driverRepo.RecordCompletion(ctx, req.DriverID, breakdown.DriverEarning); err != nil {
			return err
		}
		if err := s.driverRepo.ClearActiveRide(ctx, req.DriverID, ride.ID); err != nil {
			return err
		}
		return s.earningsRepo.UpsertDaily(ctx, req.DriverID, models.EarningsDay(now),
			breakdown.FinalAmount, breakdown.PlatformFee, breakdown.DriverEarning)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRideCache(ctx, ride.ID)
	s.publishRideEvent(completed, "ride_completed")
	s.notifications.NotifyRider(ctx, ride.RiderID, models.NotificationRideCompleted,
		"Ride completed",
		"Your ride is complete. Total: "+breakdown.FinalAmount.String(),
		map[string]string{"ride_id": ride.ID.Hex(), "payment_id": pmt.ID.Hex()})
	s.notifications.NotifyDriver(ctx, req.DriverID, models.NotificationRideCompleted,
		"Ride completed",
		"You earned "+breakdown.DriverEarning.String(),
		map[string]string{"ride_id": ride.ID.Hex()})

	s.log.LogRideEvent(ride.ID, "completed", map[string]interface{}{
		"final_fare":     breakdown.FinalAmount.String(),
		"platform_fee":   breakdown.PlatformFee.String(),
		"driver_earning": breakdown.DriverEarning.String(),
	})

	return completed, nil
}

func (s *rideService) Cancel(ctx context.Context, req *CancelRideRequest) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	switch req.Actor {
	case models.CancelActorRider:
		if ride.RiderID != req.ActorID {
			return nil, apperrors.Forbidden("only the ride's rider can cancel it")
		}
	case models.CancelActorDriver:
		if ride.DriverID == nil || *ride.DriverID != req.ActorID {
			return nil, apperrors.Forbidden("only the assigned driver can cancel the ride")
		}
	default:
		return nil, apperrors.Validationf("unknown cancel actor %q", req.Actor)
	}

	if ride.Status != models.RideStatusPending && ride.Status != models.RideStatusAccepted {
		return nil, apperrors.InvalidTransition(string(ride.Status), "cancel")
	}

	now := time.Now()
	allowed := []models.RideStatus{models.RideStatusPending, models.RideStatusAccepted}

	var cancelled *models.Ride
	err = s.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		cancelled, err = s.rideRepo.Cancel(ctx, req.RideID, allowed, req.Actor, req.Reason, now)
		if err != nil {
			return err
		}
		if err := s.riderRepo.ClearActiveRide(ctx, ride.RiderID, ride.ID); err != nil {
			return err
		}
		if ride.DriverID != nil {
			if err := s.driverRepo.ClearActiveRide(ctx, *ride.DriverID, ride.ID); err != nil {
				return err
			}
		}
		if err := s.negotiationRepo.ExpireOpenForRide(ctx, ride.ID, now); err != nil {
			return err
		}
		if ride.PromoID != nil {
			return s.promoService.Release(ctx, *ride.PromoID, ride.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRideCache(ctx, ride.ID)
	s.publishRideEvent(cancelled, "ride_cancelled")
	s.notifyCancellation(ctx, cancelled, req.Actor)

	s.log.LogRideEvent(ride.ID, "cancelled", map[string]interface{}{
		"cancelled_by": string(req.Actor),
		"reason":       req.Reason,
	})

	return cancelled, nil
}

func (s *rideService) Get(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	if ride := s.rideFromCache(ctx, rideID); ride != nil {
		return ride, nil
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status.Active() {
		s.cacheRide(ctx, ride)
	}

	return ride, nil
}

func (s *rideService) List(ctx context.Context, req *ListRidesRequest) ([]*models.Ride, int64, error) {
	filter := &interfaces.RideFilter{
		RiderID:  req.RiderID,
		DriverID: req.DriverID,
		Status:   req.Status,
		From:     req.From,
		To:       req.To,
	}

	rides, total, err := s.rideRepo.List(ctx, filter, req.Params)
	if err != nil {
		return nil, 0, err
	}

	// Listing doubles as a liveness signal for the requesting actor.
	now := time.Now()
	if req.RiderID != nil {
		if err := s.riderRepo.TouchLastActive(ctx, *req.RiderID, now); err != nil {
			s.log.WithError(err).Warn("ride: failed to touch rider last active")
		}
	}

	return rides, total, nil
}

func validateCreate(req *CreateRideRequest) error {
	if !utils.ValidCoordinates(req.PickupLat, req.PickupLng) {
		return apperrors.Validationf("invalid pickup coordinates (%f, %f)", req.PickupLat, req.PickupLng)
	}
	if !utils.ValidCoordinates(req.DropLat, req.DropLng) {
		return apperrors.Validationf("invalid dropoff coordinates (%f, %f)", req.DropLat, req.DropLng)
	}
	if !req.Fare.IsPositive() {
		return apperrors.Validationf("fare must be positive, got %s", req.Fare)
	}
	if req.SeatCount < models.MinSeatCount || req.SeatCount > models.MaxSeatCount {
		return apperrors.Validationf("seat count must be between %d and %d", models.MinSeatCount, models.MaxSeatCount)
	}
	if len(req.Stops) > utils.MaxStops {
		return apperrors.Validationf("at most %d stops are allowed", utils.MaxStops)
	}
	for _, stop := range req.Stops {
		if !stop.Valid() {
			return apperrors.Validationf("invalid stop coordinates")
		}
	}
	return nil
}

func (s *rideService) resolveVehicle(ctx context.Context, req *AcceptRideRequest, seats int) (*models.Vehicle, error) {
	if req.VehicleID != nil {
		vehicle, err := s.vehicleRepo.GetByID(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
		if vehicle.DriverID != req.DriverID {
			return nil, apperrors.Forbidden("vehicle does not belong to the driver")
		}
		if !vehicle.Usable() {
			return nil, apperrors.Validationf("vehicle is not active and verified")
		}
		if vehicle.SeatCount < seats {
			return nil, apperrors.Validationf("vehicle has %d seats, ride needs %d", vehicle.SeatCount, seats)
		}
		return vehicle, nil
	}

	return s.vehicleRepo.FirstUsableForDriver(ctx, req.DriverID, seats)
}

func (s *rideService) estimateRoute(ctx context.Context, req *CreateRideRequest) (float64, int) {
	if s.mapsProvider != nil {
		routeReq := &maps.RouteRequest{
			Origin:      maps.Location{Latitude: req.PickupLat, Longitude: req.PickupLng},
			Destination: maps.Location{Latitude: req.DropLat, Longitude: req.DropLng},
		}
		for _, stop := range req.Stops {
			routeReq.Waypoints = append(routeReq.Waypoints, maps.Location{
				Latitude:  stop.Latitude(),
				Longitude: stop.Longitude(),
			})
		}

		estimate, err := s.mapsProvider.GetRouteEstimate(ctx, routeReq)
		if err == nil {
			return utils.RoundDistance(estimate.DistanceKM), estimate.DurationMinutes
		}
		s.log.WithError(err).Warn("ride: route estimate failed, using haversine")
	}

	distance := utils.RoundDistance(utils.CalculateDistance(req.PickupLat, req.PickupLng, req.DropLat, req.DropLng))
	return distance, utils.EstimateETAMinutes(distance, 0)
}

func (s *rideService) notifyCancellation(ctx context.Context, ride *models.Ride, actor models.CancelActor) {
	data := map[string]string{
		"ride_id":      ride.ID.Hex(),
		"cancelled_by": string(actor),
	}

	if actor == models.CancelActorRider && ride.DriverID != nil {
		s.notifications.NotifyDriver(ctx, *ride.DriverID, models.NotificationRideCancelled,
			"Ride cancelled", "The rider cancelled the ride", data)
	}
	if actor == models.CancelActorDriver {
		s.notifications.NotifyRider(ctx, ride.RiderID, models.NotificationRideCancelled,
			"Ride cancelled", "The driver cancelled the ride", data)
	}
}

func (s *rideService) publishRideEvent(ride *models.Ride, event string) {
	if s.wsHandler == nil {
		return
	}

	payload := map[string]interface{}{
		"ride_id": ride.ID.Hex(),
		"status":  string(ride.Status),
	}
	s.wsHandler.SendRideUpdate(ride.ID, event, payload)
	s.wsHandler.SendUserNotification(ride.RiderID, event, payload)
	if ride.DriverID != nil {
		s.wsHandler.SendUserNotification(*ride.DriverID, event, payload)
	}
}

const rideCacheTTL = 10 * time.Minute

func (s *rideService) cacheRide(ctx context.Context, ride *models.Ride) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, "ride:"+ride.ID.Hex(), ride, rideCacheTTL); err != nil {
		s.log.WithError(err).WithRideID(ride.ID).Debug("ride: cache write failed")
	}
}

func (s *rideService) rideFromCache(ctx context.Context, rideID primitive.ObjectID) *models.Ride {
	if s.cache == nil {
		return nil
	}
	var ride models.Ride
	if err := s.cache.Get(ctx, "ride:"+rideID.Hex(), &ride); err != nil {
		return nil
	}
	return &ride
}

func (s *rideService) invalidateRideCache(ctx context.Context, rideID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, "ride:"+rideID.Hex()); err != nil {
		s.log.WithError(err).WithRideID(rideID).Debug("ride: cache invalidation failed")
	}
}
