package services

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ridelink/internal/apperrors"
	"ridelink/internal/config"
	"ridelink/internal/models"
	"ridelink/internal/repositories/interfaces"
	"ridelink/internal/utils"
	"ridelink/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ interfaces.RideRepository        = (*mockRideRepo)(nil)
	_ interfaces.RiderRepository       = (*mockRiderRepo)(nil)
	_ interfaces.DriverRepository      = (*mockDriverRepo)(nil)
	_ interfaces.VehicleRepository     = (*mockVehicleRepo)(nil)
	_ interfaces.NegotiationRepository = (*mockNegotiationRepo)(nil)
	_ interfaces.PaymentRepository     = (*mockPaymentRepo)(nil)
	_ interfaces.EarningsRepository    = (*mockEarningsRepo)(nil)
	_ interfaces.PromotionRepository   = (*mockPromotionRepo)(nil)
	_ interfaces.WalletRepository      = (*mockWalletRepo)(nil)
	_ interfaces.Transactor            = (*passTransactor)(nil)
	_ NotificationService              = (*stubNotifier)(nil)
	_ DriverLocationIndex              = (*stubGeoIndex)(nil)
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stdout"})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func testPricing() *config.PricingConfig {
	return &config.PricingConfig{
		CommissionRate:    0.15,
		NegotiationWindow: 5 * time.Minute,
		DispatchWindow:    30 * time.Minute,
		SearchRadiusKM:    10,
		SearchLimit:       20,
	}
}

// mockRideRepo stores rides in memory and mirrors the conditional-update
// semantics of the mongo implementation: transitions only succeed when the
// stored status matches the precondition.
type mockRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride

	createErr error
}

func newMockRideRepo() *mockRideRepo {
	return &mockRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (m *mockRideRepo) put(ride *models.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	m.rides[ride.ID] = ride
}

func (m *mockRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt
	m.rides[ride.ID] = ride
	return nil
}

func (m *mockRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, apperrors.NotFound("ride")
	}
	copied := *ride
	return &copied, nil
}

func (m *mockRideRepo) GetByRideNumber(ctx context.Context, rideNumber string) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ride := range m.rides {
		if ride.RideNumber == rideNumber {
			copied := *ride
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("ride")
}

func (m *mockRideRepo) AcceptPending(ctx context.Context, id, driverID, vehicleID primitive.ObjectID, acceptedAt time.Time) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != models.RideStatusPending {
		return nil, apperrors.Conflict("ride is no longer pending")
	}
	ride.Status = models.RideStatusAccepted
	ride.DriverID = &driverID
	ride.VehicleID = &vehicleID
	ride.AcceptedAt = &acceptedAt
	copied := *ride
	return &copied, nil
}

func (m *mockRideRepo) Start(ctx context.Context, id primitive.ObjectID, startedAt time.Time) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != models.RideStatusAccepted {
		return nil, apperrors.Conflict("ride is not accepted")
	}
	ride.Status = models.RideStatusInProgress
	ride.StartedAt = &startedAt
	copied := *ride
	return &copied, nil
}

func (m *mockRideRepo) Complete(ctx context.Context, id primitive.ObjectID, completion *interfaces.RideCompletion) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != models.RideStatusInProgress {
		return nil, apperrors.Conflict("ride is not in progress")
	}
	ride.Status = models.RideStatusCompleted
	ride.FinalFare = &completion.FinalFare
	ride.ActualDistanceKM = completion.ActualDistance
	ride.ActualDurationMin = completion.ActualDuration
	ride.PaymentID = &completion.PaymentID
	ride.CompletedAt = &completion.CompletedAt
	copied := *ride
	return &copied, nil
}

func (m *mockRideRepo) Cancel(ctx context.Context, id primitive.ObjectID, allowed []models.RideStatus, cancelledBy models.CancelActor, reason string, cancelledAt time.Time) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, apperrors.NotFound("ride")
	}
	permitted := false
	for _, status := range allowed {
		if ride.Status == status {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, apperrors.Conflict("ride cannot be cancelled in its current state")
	}
	ride.Status = models.RideStatusCancelled
	ride.CancelledBy = cancelledBy
	ride.CancelReason = reason
	ride.CancelledAt = &cancelledAt
	copied := *ride
	return &copied, nil
}

func (m *mockRideRepo) SetNegotiatedFare(ctx context.Context, id primitive.ObjectID, fare models.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != models.RideStatusPending {
		return apperrors.Conflict("ride is no longer pending")
	}
	ride.NegotiatedFare = &fare
	return nil
}

func (m *mockRideRepo) GetByRider(ctx context.Context, riderID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := &interfaces.RideFilter{RiderID: &riderID}
	return m.List(ctx, filter, params)
}

func (m *mockRideRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := &interfaces.RideFilter{DriverID: &driverID}
	return m.List(ctx, filter, params)
}

func (m *mockRideRepo) GetByStatus(ctx context.Context, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := &interfaces.RideFilter{Status: &status}
	return m.List(ctx, filter, params)
}

func (m *mockRideRepo) List(ctx context.Context, filter *interfaces.RideFilter, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.Ride
	for _, ride := range m.rides {
		if filter.RiderID != nil && ride.RiderID != *filter.RiderID {
			continue
		}
		if filter.DriverID != nil && (ride.DriverID == nil || *ride.DriverID != *filter.DriverID) {
			continue
		}
		if filter.Status != nil && ride.Status != *filter.Status {
			continue
		}
		if filter.From != nil && ride.RequestedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !ride.RequestedAt.Before(*filter.To) {
			continue
		}
		copied := *ride
		matched = append(matched, &copied)
	}
	return matched, int64(len(matched)), nil
}

func (m *mockRideRepo) FindDispatchable(ctx context.Context, now time.Time, window time.Duration, limit int) ([]*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.Ride
	for _, ride := range m.rides {
		if ride.Status != models.RideStatusPending || ride.DriverID != nil {
			continue
		}
		if ride.ScheduledTime != nil && ride.ScheduledTime.After(now.Add(window)) {
			continue
		}
		copied := *ride
		matched = append(matched, &copied)
	}
	// Oldest first, limited, like the mongo query.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RequestedAt.Before(matched[j].RequestedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

type mockRiderRepo struct {
	mu     sync.Mutex
	riders map[primitive.ObjectID]*models.Rider
}

func newMockRiderRepo() *mockRiderRepo {
	return &mockRiderRepo{riders: make(map[primitive.ObjectID]*models.Rider)}
}

func (m *mockRiderRepo) put(rider *models.Rider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rider.ID.IsZero() {
		rider.ID = primitive.NewObjectID()
	}
	m.riders[rider.ID] = rider
}

func (m *mockRiderRepo) Create(ctx context.Context, rider *models.Rider) error {
	m.put(rider)
	return nil
}

func (m *mockRiderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rider, ok := m.riders[id]
	if !ok {
		return nil, apperrors.NotFound("rider")
	}
	copied := *rider
	return &copied, nil
}

func (m *mockRiderRepo) BindActiveRide(ctx context.Context, riderID, rideID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rider, ok := m.riders[riderID]
	if !ok {
		return apperrors.NotFound("rider")
	}
	if rider.ActiveRideID != nil {
		return apperrors.Conflict("rider already has an active ride")
	}
	rider.ActiveRideID = &rideID
	return nil
}

func (m *mockRiderRepo) ClearActiveRide(ctx context.Context, riderID, rideID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rider, ok := m.riders[riderID]
	if !ok {
		return apperrors.NotFound("rider")
	}
	if rider.ActiveRideID != nil && *rider.ActiveRideID == rideID {
		rider.ActiveRideID = nil
	}
	return nil
}

func (m *mockRiderRepo) IncrementRideCount(ctx context.Context, riderID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rider, ok := m.riders[riderID]; ok {
		rider.TotalRides++
	}
	return nil
}

func (m *mockRiderRepo) AddRecentLocation(ctx context.Context, riderID primitive.ObjectID, location *models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rider, ok := m.riders[riderID]; ok {
		rider.RecentLocations = append(rider.RecentLocations, *location)
	}
	return nil
}

func (m *mockRiderRepo) TouchLastActive(ctx context.Context, riderID primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rider, ok := m.riders[riderID]; ok {
		rider.LastActiveAt = &at
	}
	return nil
}

func (m *mockRiderRepo) AddDeviceToken(ctx context.Context, riderID primitive.ObjectID, token *models.DeviceToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rider, ok := m.riders[riderID]; ok {
		rider.DeviceTokens = append(rider.DeviceTokens, *token)
	}
	return nil
}

type mockDriverRepo struct {
	mu      sync.Mutex
	drivers map[primitive.ObjectID]*models.Driver
}

func newMockDriverRepo() *mockDriverRepo {
	return &mockDriverRepo{drivers: make(map[primitive.ObjectID]*models.Driver)}
}

func (m *mockDriverRepo) put(driver *models.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if driver.ID.IsZero() {
		driver.ID = primitive.NewObjectID()
	}
	m.drivers[driver.ID] = driver
}

func (m *mockDriverRepo) Create(ctx context.Context, driver *models.Driver) error {
	m.put(driver)
	return nil
}

func (m *mockDriverRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, apperrors.NotFound("driver")
	}
	copied := *driver
	return &copied, nil
}

func (m *mockDriverRepo) BindActiveRide(ctx context.Context, driverID, rideID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[driverID]
	if !ok {
		return apperrors.NotFound("driver")
	}
	if driver.ActiveRideID != nil {
		return apperrors.Conflict("driver already has an active ride")
	}
	driver.ActiveRideID = &rideID
	return nil
}

func (m *mockDriverRepo) ClearActiveRide(ctx context.Context, driverID, rideID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[driverID]
	if !ok {
		return apperrors.NotFound("driver")
	}
	if driver.ActiveRideID != nil && *driver.ActiveRideID == rideID {
		driver.ActiveRideID = nil
	}
	return nil
}

func (m *mockDriverRepo) RecordCompletion(ctx context.Context, driverID primitive.ObjectID, earning models.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if driver, ok := m.drivers[driverID]; ok {
		driver.TotalRides++
		driver.TotalEarnings += earning
	}
	return nil
}

func (m *mockDriverRepo) UpdateLocation(ctx context.Context, driverID primitive.ObjectID, location *models.Location, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[driverID]
	if !ok {
		return apperrors.NotFound("driver")
	}
	driver.CurrentLocation = location
	driver.LocationUpdatedAt = &at
	return nil
}

func (m *mockDriverRepo) SetOnline(ctx context.Context, driverID primitive.ObjectID, online bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if driver, ok := m.drivers[driverID]; ok {
		driver.IsOnline = online
	}
	return nil
}

func (m *mockDriverRepo) ListAvailable(ctx context.Context, limit int) ([]*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var available []*models.Driver
	for _, driver := range m.drivers {
		if !driver.Dispatchable() || driver.ActiveRideID != nil {
			continue
		}
		copied := *driver
		available = append(available, &copied)
	}
	// Most recently located first, limited, like the mongo query.
	sort.Slice(available, func(i, j int) bool {
		ti, tj := available[i].LocationUpdatedAt, available[j].LocationUpdatedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	if len(available) > limit {
		available = available[:limit]
	}
	return available, nil
}

func (m *mockDriverRepo) AddDeviceToken(ctx context.Context, driverID primitive.ObjectID, token *models.DeviceToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if driver, ok := m.drivers[driverID]; ok {
		driver.DeviceTokens = append(driver.DeviceTokens, *token)
	}
	return nil
}

type mockVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newMockVehicleRepo() *mockVehicleRepo {
	return &mockVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (m *mockVehicleRepo) put(vehicle *models.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	m.vehicles[vehicle.ID] = vehicle
}

func (m *mockVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	m.put(vehicle)
	return nil
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, apperrors.NotFound("vehicle")
	}
	copied := *vehicle
	return &copied, nil
}

func (m *mockVehicleRepo) FirstUsableForDriver(ctx context.Context, driverID primitive.ObjectID, minSeats int) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, vehicle := range m.vehicles {
		if vehicle.DriverID == driverID && vehicle.Usable() && vehicle.SeatCount >= minSeats {
			copied := *vehicle
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("usable vehicle")
}

type mockNegotiationRepo struct {
	mu           sync.Mutex
	negotiations map[primitive.ObjectID]*models.Negotiation
	expiredCalls int32
}

func newMockNegotiationRepo() *mockNegotiationRepo {
	return &mockNegotiationRepo{negotiations: make(map[primitive.ObjectID]*models.Negotiation)}
}

func (m *mockNegotiationRepo) put(n *models.Negotiation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	m.negotiations[n.ID] = n
}

func (m *mockNegotiationRepo) Create(ctx context.Context, negotiation *models.Negotiation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Mirrors the partial unique index on {ride_id} where status is pending.
	for _, n := range m.negotiations {
		if n.RideID == negotiation.RideID && n.Status == models.NegotiationStatusPending {
			return apperrors.Conflict("a negotiation is already pending for this ride")
		}
	}
	if negotiation.ID.IsZero() {
		negotiation.ID = primitive.NewObjectID()
	}
	negotiation.CreatedAt = time.Now()
	m.negotiations[negotiation.ID] = negotiation
	return nil
}

func (m *mockNegotiationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Negotiation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.negotiations[id]
	if !ok {
		return nil, apperrors.NotFound("negotiation")
	}
	copied := *n
	return &copied, nil
}

func (m *mockNegotiationRepo) GetOpenByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Negotiation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var open []*models.Negotiation
	for _, n := range m.negotiations {
		if n.RideID == rideID && n.Status == models.NegotiationStatusPending {
			copied := *n
			open = append(open, &copied)
		}
	}
	return open, nil
}

func (m *mockNegotiationRepo) GetByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Negotiation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Negotiation
	for _, n := range m.negotiations {
		if n.RideID == rideID {
			copied := *n
			all = append(all, &copied)
		}
	}
	return all, nil
}

func (m *mockNegotiationRepo) Respond(ctx context.Context, id primitive.ObjectID, status models.NegotiationStatus, respondedAt time.Time) (*models.Negotiation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.negotiations[id]
	if !ok || n.Status != models.NegotiationStatusPending {
		return nil, apperrors.Conflict("negotiation is not pending")
	}
	n.Status = status
	n.RespondedAt = &respondedAt
	copied := *n
	return &copied, nil
}

func (m *mockNegotiationRepo) MarkExpired(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
	atomic.AddInt32(&m.expiredCalls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if n, ok := m.negotiations[id]; ok && n.Status == models.NegotiationStatusPending {
			n.Status = models.NegotiationStatusExpired
		}
	}
	return nil
}

func (m *mockNegotiationRepo) ExpireOpenForRide(ctx context.Context, rideID primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.negotiations {
		if n.RideID == rideID && n.Status == models.NegotiationStatusPending {
			n.Status = models.NegotiationStatusExpired
		}
	}
	return nil
}

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[primitive.ObjectID]*models.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[primitive.ObjectID]*models.Payment)}
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	payment.CreatedAt = time.Now()
	m.payments[payment.ID] = payment
	return nil
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, apperrors.NotFound("payment")
	}
	copied := *payment
	return &copied, nil
}

func (m *mockPaymentRepo) GetByRide(ctx context.Context, rideID primitive.ObjectID) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, payment := range m.payments {
		if payment.RideID == rideID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("payment")
}

func (m *mockPaymentRepo) MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string, processedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return apperrors.NotFound("payment")
	}
	payment.Status = models.PaymentStatusPaid
	payment.TransactionID = transactionID
	payment.ProcessedAt = &processedAt
	return nil
}

func (m *mockPaymentRepo) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return apperrors.NotFound("payment")
	}
	payment.Status = models.PaymentStatusFailed
	payment.FailureReason = reason
	return nil
}

func (m *mockPaymentRepo) MarkRefunded(ctx context.Context, id primitive.ObjectID, refundedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return apperrors.NotFound("payment")
	}
	payment.Status = models.PaymentStatusRefunded
	payment.RefundedAt = &refundedAt
	return nil
}

func (m *mockPaymentRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID, from, to time.Time) ([]*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.Payment
	for _, payment := range m.payments {
		if payment.DriverID == driverID {
			copied := *payment
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

type mockEarningsRepo struct {
	mu      sync.Mutex
	entries map[string]*models.DriverEarnings
}

func newMockEarningsRepo() *mockEarningsRepo {
	return &mockEarningsRepo{entries: make(map[string]*models.DriverEarnings)}
}

func earningsKey(driverID primitive.ObjectID, day string) string {
	return driverID.Hex() + "/" + day
}

func (m *mockEarningsRepo) UpsertDaily(ctx context.Context, driverID primitive.ObjectID, day string, gross, fee, net models.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := earningsKey(driverID, day)
	entry, ok := m.entries[key]
	if !ok {
		entry = &models.DriverEarnings{DriverID: driverID, Day: day}
		m.entries[key] = entry
	}
	entry.RideCount++
	entry.GrossAmount += gross
	entry.PlatformFee += fee
	entry.NetAmount += net
	return nil
}

func (m *mockEarningsRepo) GetByDriverDay(ctx context.Context, driverID primitive.ObjectID, day string) (*models.DriverEarnings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[earningsKey(driverID, day)]
	if !ok {
		return nil, apperrors.NotFound("earnings")
	}
	copied := *entry
	return &copied, nil
}

func (m *mockEarningsRepo) ListByDriver(ctx context.Context, driverID primitive.ObjectID, fromDay, toDay string) ([]*models.DriverEarnings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.DriverEarnings
	for _, entry := range m.entries {
		if entry.DriverID == driverID {
			copied := *entry
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

type mockPromotionRepo struct {
	mu          sync.Mutex
	promos      map[primitive.ObjectID]*models.PromoCode
	redemptions []*models.PromoRedemption
}

func newMockPromotionRepo() *mockPromotionRepo {
	return &mockPromotionRepo{promos: make(map[primitive.ObjectID]*models.PromoCode)}
}

func (m *mockPromotionRepo) put(promo *models.PromoCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if promo.ID.IsZero() {
		promo.ID = primitive.NewObjectID()
	}
	m.promos[promo.ID] = promo
}

func (m *mockPromotionRepo) Create(ctx context.Context, promo *models.PromoCode) error {
	m.put(promo)
	return nil
}

func (m *mockPromotionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	promo, ok := m.promos[id]
	if !ok {
		return nil, apperrors.NotFound("promo code")
	}
	copied := *promo
	return &copied, nil
}

func (m *mockPromotionRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, promo := range m.promos {
		if promo.Code == code {
			copied := *promo
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("promo code")
}

func (m *mockPromotionRepo) ConsumeUsage(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	promo, ok := m.promos[id]
	if !ok {
		return apperrors.NotFound("promo code")
	}
	if !promo.IsActive || !promo.WithinValidity(now) || promo.UsedCount >= promo.UsageLimit {
		return apperrors.Conflict("promo code is no longer usable")
	}
	promo.UsedCount++
	return nil
}

func (m *mockPromotionRepo) ReleaseUsage(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if promo, ok := m.promos[id]; ok && promo.UsedCount > 0 {
		promo.UsedCount--
	}
	return nil
}

func (m *mockPromotionRepo) RecordRedemption(ctx context.Context, redemption *models.PromoRedemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if redemption.ID.IsZero() {
		redemption.ID = primitive.NewObjectID()
	}
	m.redemptions = append(m.redemptions, redemption)
	return nil
}

func (m *mockPromotionRepo) CountRedemptions(ctx context.Context, promoID, riderID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.redemptions {
		if r.PromoID == promoID && r.RiderID == riderID {
			count++
		}
	}
	return count, nil
}

func (m *mockPromotionRepo) DeleteRedemption(ctx context.Context, promoID, rideID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.redemptions[:0]
	for _, r := range m.redemptions {
		if r.PromoID == promoID && r.RideID == rideID {
			continue
		}
		kept = append(kept, r)
	}
	m.redemptions = kept
	return nil
}

type mockWalletRepo struct {
	mu      sync.Mutex
	wallets map[primitive.ObjectID]*models.Wallet
	ledger  []*models.WalletTransaction
}

func newMockWalletRepo() *mockWalletRepo {
	return &mockWalletRepo{wallets: make(map[primitive.ObjectID]*models.Wallet)}
}

func (m *mockWalletRepo) put(wallet *models.Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wallet.ID.IsZero() {
		wallet.ID = primitive.NewObjectID()
	}
	m.wallets[wallet.UserID] = wallet
}

func (m *mockWalletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	m.put(wallet)
	return nil
}

func (m *mockWalletRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet, ok := m.wallets[userID]
	if !ok {
		return nil, apperrors.NotFound("wallet")
	}
	copied := *wallet
	return &copied, nil
}

func (m *mockWalletRepo) Debit(ctx context.Context, userID primitive.ObjectID, amount models.Money) (models.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet, ok := m.wallets[userID]
	if !ok || !wallet.IsActive {
		return 0, apperrors.NotFound("wallet")
	}
	if wallet.Balance < amount {
		return 0, apperrors.InsufficientFunds("wallet balance is too low")
	}
	wallet.Balance -= amount
	return wallet.Balance, nil
}

func (m *mockWalletRepo) Credit(ctx context.Context, userID primitive.ObjectID, amount models.Money) (models.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet, ok := m.wallets[userID]
	if !ok || !wallet.IsActive {
		return 0, apperrors.NotFound("wallet")
	}
	wallet.Balance += amount
	return wallet.Balance, nil
}

func (m *mockWalletRepo) RecordTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.ID.IsZero() {
		txn.ID = primitive.NewObjectID()
	}
	m.ledger = append(m.ledger, txn)
	return nil
}

func (m *mockWalletRepo) GetTransactions(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*models.WalletTransaction
	for _, txn := range m.ledger {
		if txn.UserID == userID {
			copied := *txn
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

// passTransactor runs the function directly. failTransactor injects an error
// before the function runs, which models an aborted transaction.
type passTransactor struct {
	calls int32
}

func (t *passTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	atomic.AddInt32(&t.calls, 1)
	return fn(ctx)
}

// stubNotifier counts notification calls; the real service never returns an
// error so neither does this one.
type stubNotifier struct {
	riderCalls  int32
	driverCalls int32
}

func (s *stubNotifier) NotifyRider(ctx context.Context, riderID primitive.ObjectID, kind models.NotificationType, title, message string, data map[string]string) {
	atomic.AddInt32(&s.riderCalls, 1)
}

func (s *stubNotifier) NotifyDriver(ctx context.Context, driverID primitive.ObjectID, kind models.NotificationType, title, message string, data map[string]string) {
	atomic.AddInt32(&s.driverCalls, 1)
}

// stubGeoIndex returns a fixed candidate list, or an error when failErr is
// set, which should push the matcher onto the repository scan path.
type stubGeoIndex struct {
	ids     []primitive.ObjectID
	failErr error
}

func (s *stubGeoIndex) Add(ctx context.Context, driverID primitive.ObjectID, lat, lng float64) error {
	return s.failErr
}

func (s *stubGeoIndex) Nearby(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]primitive.ObjectID, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	return s.ids, nil
}

func (s *stubGeoIndex) Remove(ctx context.Context, driverID primitive.ObjectID) error {
	return s.failErr
}
