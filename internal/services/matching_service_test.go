package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Query point in Ikeja; the Victoria Island driver sits about 11.7 km away.
const (
	queryLat = 6.5244
	queryLng = 3.3792

	farLat = 6.4281
	farLng = 3.4219
)

type matchingFixture struct {
	driverRepo      *mockDriverRepo
	rideRepo        *mockRideRepo
	negotiationRepo *mockNegotiationRepo
	geoIndex        *stubGeoIndex
	svc             MatchingService
}

func newMatchingFixture(t *testing.T, geoIndex *stubGeoIndex) *matchingFixture {
	t.Helper()

	f := &matchingFixture{
		driverRepo:      newMockDriverRepo(),
		rideRepo:        newMockRideRepo(),
		negotiationRepo: newMockNegotiationRepo(),
		geoIndex:        geoIndex,
	}

	var index DriverLocationIndex
	if geoIndex != nil {
		index = geoIndex
	}
	f.svc = NewMatchingService(
		f.driverRepo, f.rideRepo, f.negotiationRepo, index, nil,
		testPricing(), testLogger(t),
	)
	return f
}

func (f *matchingFixture) addDriverAt(lat, lng float64, createdAt time.Time) *models.Driver {
	loc := models.NewLocation(lat, lng, "")
	driver := &models.Driver{
		Name: "Femi", IsActive: true, IsVerified: true, IsOnline: true,
		CurrentLocation: &loc,
	}
	driver.CreatedAt = createdAt
	f.driverRepo.put(driver)
	return driver
}

func (f *matchingFixture) addPendingRideAt(lat, lng float64, requestedAt time.Time) *models.Ride {
	ride := &models.Ride{
		RiderID:      primitive.NewObjectID(),
		Status:       models.RideStatusPending,
		Pickup:       models.NewLocation(lat, lng, ""),
		Dropoff:      models.NewLocation(farLat, farLng, ""),
		SeatCount:    1,
		OriginalFare: 1000,
		RequestedAt:  requestedAt,
	}
	f.rideRepo.put(ride)
	return ride
}

func TestNearbyDriversFiltersByRadius(t *testing.T) {
	f := newMatchingFixture(t, nil)
	near := f.addDriverAt(queryLat+0.01, queryLng, time.Now())
	far := f.addDriverAt(farLat, farLng, time.Now())

	matches, err := f.svc.NearbyDrivers(context.Background(), queryLat, queryLng, 10, 20)
	if err != nil {
		t.Fatalf("NearbyDrivers returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].Driver.ID != near.ID {
		t.Fatalf("matches = %d, want only the near driver", len(matches))
	}

	matches, err = f.svc.NearbyDrivers(context.Background(), queryLat, queryLng, 15, 20)
	if err != nil {
		t.Fatalf("NearbyDrivers returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d at 15km, want 2", len(matches))
	}

	var sawFar bool
	for _, m := range matches {
		if m.Driver.ID == far.ID {
			sawFar = true
			if m.DistanceKM < 11 || m.DistanceKM > 12.5 {
				t.Errorf("far driver distance = %.2f, want about 11.7", m.DistanceKM)
			}
		}
	}
	if !sawFar {
		t.Error("far driver missing at 15km radius")
	}
}

func TestNearbyDriversOrdering(t *testing.T) {
	f := newMatchingFixture(t, nil)
	older := f.addDriverAt(queryLat+0.02, queryLng, time.Now().Add(-time.Hour))
	newer := f.addDriverAt(queryLat+0.02, queryLng, time.Now())
	closest := f.addDriverAt(queryLat+0.005, queryLng, time.Now())

	matches, err := f.svc.NearbyDrivers(context.Background(), queryLat, queryLng, 10, 20)
	if err != nil {
		t.Fatalf("NearbyDrivers returned error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(matches))
	}
	if matches[0].Driver.ID != closest.ID {
		t.Error("closest driver not first")
	}
	if matches[1].Driver.ID != older.ID || matches[2].Driver.ID != newer.ID {
		t.Error("equidistant drivers not ordered by creation time")
	}
}

func TestNearbyDriversLimit(t *testing.T) {
	f := newMatchingFixture(t, nil)
	for i := 0; i < 5; i++ {
		f.addDriverAt(queryLat+0.001*float64(i+1), queryLng, time.Now())
	}

	matches, err := f.svc.NearbyDrivers(context.Background(), queryLat, queryLng, 10, 2)
	if err != nil {
		t.Fatalf("NearbyDrivers returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("matches = %d, want limit 2", len(matches))
	}
}

func TestNearbyDriversRejectsInvalidCoordinates(t *testing.T) {
	f := newMatchingFixture(t, nil)

	_, err := f.svc.NearbyDrivers(context.Background(), 91, 0, 10, 20)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("NearbyDrivers error = %v, want validation", err)
	}
}

func TestNearbyDriversUsesGeoIndex(t *testing.T) {
	geo := &stubGeoIndex{}
	f := newMatchingFixture(t, geo)
	indexed := f.addDriverAt(queryLat+0.01, queryLng, time.Now())
	f.addDriverAt(queryLat+0.01, queryLng, time.Now())
	geo.ids = []primitive.ObjectID{indexed.ID}

	matches, err := f.svc.NearbyDrivers(context.Background(), queryLat, queryLng, 10, 20)
	if err != nil {
		t.Fatalf("NearbyDrivers returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].Driver.ID != indexed.ID {
		t.Fatalf("matches = %d, want only the indexed driver", len(matches))
	}
}

func TestNearbyDriversFallsBackWhenGeoIndexFails(t *testing.T) {
	geo := &stubGeoIndex{failErr: errors.New("redis down")}
	f := newMatchingFixture(t, geo)
	f.addDriverAt(queryLat+0.01, queryLng, time.Now())
	f.addDriverAt(queryLat+0.02, queryLng, time.Now())

	matches, err := f.svc.NearbyDrivers(context.Background(), queryLat, queryLng, 10, 20)
	if err != nil {
		t.Fatalf("NearbyDrivers returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("matches = %d from repository fallback, want 2", len(matches))
	}
}

func TestNearbyDriversPagesPastRecentlyLocatedFarDrivers(t *testing.T) {
	f := newMatchingFixture(t, nil)
	now := time.Now()

	// Four far drivers with fresh locations fill the first fetch batch
	// (limit*4); the only in-radius driver reported its position earlier.
	for i := 0; i < 4; i++ {
		driver := f.addDriverAt(queryLat+1.0, queryLng, now)
		at := now.Add(-time.Duration(i) * time.Minute)
		f.driverRepo.drivers[driver.ID].LocationUpdatedAt = &at
	}
	near := f.addDriverAt(queryLat+0.01, queryLng, now)
	stale := now.Add(-time.Hour)
	f.driverRepo.drivers[near.ID].LocationUpdatedAt = &stale

	matches, err := f.svc.NearbyDrivers(context.Background(), queryLat, queryLng, 10, 1)
	if err != nil {
		t.Fatalf("NearbyDrivers returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].Driver.ID != near.ID {
		t.Fatalf("matches = %d, want the in-radius driver found past the first batch", len(matches))
	}
}

func TestAvailableRidesPagesPastDistantBacklog(t *testing.T) {
	f := newMatchingFixture(t, nil)
	driver := f.addDriverAt(queryLat, queryLng, time.Now())

	// Four older rides far away fill the first fetch batch (limit*4).
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		f.addPendingRideAt(queryLat+1.0, queryLng, base.Add(time.Duration(i)*time.Minute))
	}
	near := f.addPendingRideAt(queryLat+0.01, queryLng, time.Now())

	matches, err := f.svc.AvailableRides(context.Background(), driver.ID, queryLat, queryLng, 10, 1)
	if err != nil {
		t.Fatalf("AvailableRides returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].Ride.ID != near.ID {
		t.Fatalf("matches = %d, want the in-radius ride found past the first batch", len(matches))
	}
}

func TestAvailableRidesRequiresDispatchableDriver(t *testing.T) {
	f := newMatchingFixture(t, nil)
	driver := f.addDriverAt(queryLat, queryLng, time.Now())
	f.driverRepo.drivers[driver.ID].IsOnline = false

	_, err := f.svc.AvailableRides(context.Background(), driver.ID, queryLat, queryLng, 10, 20)
	if !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Errorf("AvailableRides error = %v, want forbidden", err)
	}
}

func TestAvailableRidesAttachesOpenNegotiation(t *testing.T) {
	f := newMatchingFixture(t, nil)
	driver := f.addDriverAt(queryLat, queryLng, time.Now())
	ride := f.addPendingRideAt(queryLat+0.01, queryLng, time.Now())

	negotiation := &models.Negotiation{
		RideID:       ride.ID,
		RiderID:      ride.RiderID,
		ProposedFare: 800,
		Status:       models.NegotiationStatusPending,
		ExpiresAt:    time.Now().Add(5 * time.Minute),
	}
	f.negotiationRepo.put(negotiation)

	matches, err := f.svc.AvailableRides(context.Background(), driver.ID, queryLat, queryLng, 10, 20)
	if err != nil {
		t.Fatalf("AvailableRides returned error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Negotiation == nil || matches[0].Negotiation.ID != negotiation.ID {
		t.Error("open negotiation not attached to the match")
	}
}

func TestAvailableRidesOrderedByDistanceThenAge(t *testing.T) {
	f := newMatchingFixture(t, nil)
	driver := f.addDriverAt(queryLat, queryLng, time.Now())

	older := f.addPendingRideAt(queryLat+0.02, queryLng, time.Now().Add(-time.Minute))
	newer := f.addPendingRideAt(queryLat+0.02, queryLng, time.Now())
	closest := f.addPendingRideAt(queryLat+0.005, queryLng, time.Now())

	matches, err := f.svc.AvailableRides(context.Background(), driver.ID, queryLat, queryLng, 10, 20)
	if err != nil {
		t.Fatalf("AvailableRides returned error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(matches))
	}
	if matches[0].Ride.ID != closest.ID {
		t.Error("closest ride not first")
	}
	if matches[1].Ride.ID != older.ID || matches[2].Ride.ID != newer.ID {
		t.Error("equidistant rides not ordered by request time")
	}
}

func TestUpdateDriverLocationWritesRepoAndIndex(t *testing.T) {
	geo := &stubGeoIndex{}
	f := newMatchingFixture(t, geo)
	driver := f.addDriverAt(queryLat, queryLng, time.Now())

	err := f.svc.UpdateDriverLocation(context.Background(), driver.ID, farLat, farLng, "Victoria Island")
	if err != nil {
		t.Fatalf("UpdateDriverLocation returned error: %v", err)
	}

	stored, _ := f.driverRepo.GetByID(context.Background(), driver.ID)
	if stored.CurrentLocation == nil || stored.CurrentLocation.Latitude() != farLat {
		t.Error("driver location not updated")
	}

	if err := f.svc.UpdateDriverLocation(context.Background(), driver.ID, 91, 0, ""); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("invalid coordinates error = %v, want validation", err)
	}
}
