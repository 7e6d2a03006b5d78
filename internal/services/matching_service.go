package services

import (
	"context"
	"sort"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/config"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"
	"ridelink/internal/utils"
	"ridelink/pkg/logger"
	"ridelink/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverMatch is a candidate driver with its display-rounded distance from
// the query point.
type DriverMatch struct {
	Driver     *models.Driver `json:"driver"`
	DistanceKM float64        `json:"distance_km"`
}

// RideMatch is a dispatchable ride with its distance from the querying driver
// and the outstanding negotiation, if one is open.
type RideMatch struct {
	Ride        *models.Ride        `json:"ride"`
	DistanceKM  float64             `json:"distance_km"`
	Negotiation *models.Negotiation `json:"negotiation,omitempty"`
}

type MatchingService interface {
	NearbyDrivers(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]*DriverMatch, error)
	AvailableRides(ctx context.Context, driverID primitive.ObjectID, lat, lng, radiusKM float64, limit int) ([]*RideMatch, error)
	UpdateDriverLocation(ctx context.Context, driverID primitive.ObjectID, lat, lng float64, address string) error
}

type matchingService struct {
	driverRepo      interfaces.DriverRepository
	rideRepo        interfaces.RideRepository
	negotiationRepo interfaces.NegotiationRepository
	geoIndex        DriverLocationIndex
	wsHandler       *websocket.Handler
	pricing         *config.PricingConfig
	log             *logger.Logger
}

func NewMatchingService(
	driverRepo interfaces.DriverRepository,
	rideRepo interfaces.RideRepository,
	negotiationRepo interfaces.NegotiationRepository,
	geoIndex DriverLocationIndex,
	wsHandler *websocket.Handler,
	pricing *config.PricingConfig,
	log *logger.Logger,
) MatchingService {
	return &matchingService{
		driverRepo:      driverRepo,
		rideRepo:        rideRepo,
		negotiationRepo: negotiationRepo,
		geoIndex:        geoIndex,
		wsHandler:       wsHandler,
		pricing:         pricing,
		log:             log,
	}
}

func (s *matchingService) NearbyDrivers(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]*DriverMatch, error) {
	if !utils.ValidCoordinates(lat, lng) {
		return nil, apperrors.Validationf("invalid coordinates (%f, %f)", lat, lng)
	}
	if radiusKM <= 0 {
		radiusKM = s.pricing.SearchRadiusKM
	}
	if limit <= 0 {
		limit = s.pricing.SearchLimit
	}

	// Discovery pages through candidates until enough in-radius matches are
	// found or the pool is exhausted; truncating before the radius filter
	// would drop matches whenever the pool outgrows one batch.
	var matches []*DriverMatch
	for batch := limit * 4; ; batch *= 2 {
		candidates, exhausted, err := s.candidateDrivers(ctx, lat, lng, radiusKM, batch)
		if err != nil {
			return nil, err
		}

		matches = matches[:0]
		for _, driver := range candidates {
			if !driver.Dispatchable() || driver.CurrentLocation == nil || !driver.CurrentLocation.Valid() {
				continue
			}

			distance := utils.RoundDistance(utils.CalculateDistance(
				lat, lng,
				driver.CurrentLocation.Latitude(), driver.CurrentLocation.Longitude(),
			))
			if distance > radiusKM {
				continue
			}

			matches = append(matches, &DriverMatch{Driver: driver, DistanceKM: distance})
		}

		if len(matches) >= limit || exhausted {
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].DistanceKM != matches[j].DistanceKM {
			return matches[i].DistanceKM < matches[j].DistanceKM
		}
		return matches[i].Driver.CreatedAt.Before(matches[j].Driver.CreatedAt)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

func (s *matchingService) AvailableRides(ctx context.Context, driverID primitive.ObjectID, lat, lng, radiusKM float64, limit int) ([]*RideMatch, error) {
	if !utils.ValidCoordinates(lat, lng) {
		return nil, apperrors.Validationf("invalid coordinates (%f, %f)", lat, lng)
	}
	if radiusKM <= 0 {
		radiusKM = s.pricing.SearchRadiusKM
	}
	if limit <= 0 {
		limit = s.pricing.SearchLimit
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.Dispatchable() {
		return nil, apperrors.Forbidden("driver is not available for dispatch")
	}

	now := time.Now()

	// Pages through dispatchable rides so in-radius matches beyond the first
	// batch are never lost to the fetch limit.
	var matches []*RideMatch
	for batch := limit * 4; ; batch *= 2 {
		rides, err := s.rideRepo.FindDispatchable(ctx, now, s.pricing.DispatchWindow, batch)
		if err != nil {
			return nil, err
		}

		matches = matches[:0]
		for _, ride := range rides {
			if !ride.Pickup.Valid() {
				continue
			}

			distance := utils.RoundDistance(utils.CalculateDistance(
				lat, lng,
				ride.Pickup.Latitude(), ride.Pickup.Longitude(),
			))
			if distance > radiusKM {
				continue
			}

			matches = append(matches, &RideMatch{Ride: ride, DistanceKM: distance})
		}

		if len(matches) >= limit || len(rides) < batch {
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].DistanceKM != matches[j].DistanceKM {
			return matches[i].DistanceKM < matches[j].DistanceKM
		}
		return matches[i].Ride.RequestedAt.Before(matches[j].Ride.RequestedAt)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	for _, match := range matches {
		if negotiation, err := s.openNegotiation(ctx, match.Ride.ID, now); err == nil {
			match.Negotiation = negotiation
		} else {
			s.log.WithError(err).WithRideID(match.Ride.ID).Warn("matching: failed to resolve negotiation")
		}
	}

	return matches, nil
}

func (s *matchingService) UpdateDriverLocation(ctx context.Context, driverID primitive.ObjectID, lat, lng float64, address string) error {
	if !utils.ValidCoordinates(lat, lng) {
		return apperrors.Validationf("invalid coordinates (%f, %f)", lat, lng)
	}

	location := models.NewLocation(lat, lng, address)
	now := time.Now()

	if err := s.driverRepo.UpdateLocation(ctx, driverID, &location, now); err != nil {
		return err
	}

	if s.geoIndex != nil {
		if err := s.geoIndex.Add(ctx, driverID, lat, lng); err != nil {
			s.log.WithError(err).WithUserID(driverID).Warn("matching: geo index update failed")
		}
	}

	if s.wsHandler != nil {
		s.wsHandler.GetHub().SendDriverLocation(driverID, map[string]interface{}{
			"latitude":  lat,
			"longitude": lng,
			"address":   address,
		})
	}

	return nil
}

// candidateDrivers prefers the geo index when one is wired; a repository scan
// keeps the same semantics when it is absent or failing. The second return
// reports whether the pool was exhausted, which ends the caller's paging.
func (s *matchingService) candidateDrivers(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]*models.Driver, bool, error) {
	if s.geoIndex != nil {
		ids, err := s.geoIndex.Nearby(ctx, lat, lng, radiusKM, limit)
		if err == nil {
			drivers := make([]*models.Driver, 0, len(ids))
			for _, id := range ids {
				driver, err := s.driverRepo.GetByID(ctx, id)
				if err != nil {
					continue
				}
				drivers = append(drivers, driver)
			}
			return drivers, len(ids) < limit, nil
		}
		s.log.WithError(err).Warn("matching: geo index lookup failed, falling back to scan")
	}

	drivers, err := s.driverRepo.ListAvailable(ctx, limit)
	if err != nil {
		return nil, false, err
	}
	return drivers, len(drivers) < limit, nil
}

// openNegotiation returns the ride's outstanding negotiation, lazily expiring
// any whose window has passed.
func (s *matchingService) openNegotiation(ctx context.Context, rideID primitive.ObjectID, now time.Time) (*models.Negotiation, error) {
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
			s.log.WithError(err).WithRideID(rideID).Warn("matching: failed to mark negotiations expired")
		}
	}

	return open, nil
}
