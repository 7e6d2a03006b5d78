package handlers

import (
	"errors"
	"io"

	"ridelink/internal/models"
	"ridelink/internal/services"
	"ridelink/internal/utils"
	"ridelink/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRide opens a new ride request for the calling rider.
func (h *RideHandler) CreateRide(c *gin.Context) {
	riderID, ok := actorID(c)
	if !ok {
		return
	}

	var body validators.CreateRideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateCreateRide(&body); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	fare, err := models.ParseMoney(body.Fare)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	req := &services.CreateRideRequest{
		RiderID:       riderID,
		PickupLat:     body.Pickup.Latitude,
		PickupLng:     body.Pickup.Longitude,
		PickupAddress: body.Pickup.Address,
		DropLat:       body.Dropoff.Latitude,
		DropLng:       body.Dropoff.Longitude,
		DropAddress:   body.Dropoff.Address,
		SeatCount:     body.SeatCount,
		Fare:          fare,
		PromoCode:     body.PromoCode,
		ScheduledTime: body.ScheduledTime,
	}
	for _, stop := range body.Stops {
		req.Stops = append(req.Stops, models.NewLocation(stop.Latitude, stop.Longitude, stop.Address))
	}

	response, err := h.rideService.Create(c.Request.Context(), req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride created successfully", response)
}

// AcceptRide assigns the calling driver to a pending ride.
func (h *RideHandler) AcceptRide(c *gin.Context) {
	driverID, ok := actorID(c)
	if !ok {
		return
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body validators.AcceptRideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&body); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	req := &services.AcceptRideRequest{
		RideID:   rideID,
		DriverID: driverID,
	}
	if body.VehicleID != "" {
		vehicleID, err := primitive.ObjectIDFromHex(body.VehicleID)
		if err != nil {
			utils.BadRequestResponse(c, "invalid vehicle_id")
			return
		}
		req.VehicleID = &vehicleID
	}

	ride, err := h.rideService.Accept(c.Request.Context(), req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride accepted successfully", ride)
}

// StartRide moves an accepted ride into progress.
func (h *RideHandler) StartRide(c *gin.Context) {
	driverID, ok := actorID(c)
	if !ok {
		return
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ride, err := h.rideService.Start(c.Request.Context(), &services.StartRideRequest{
		RideID:   rideID,
		DriverID: driverID,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride started successfully", ride)
}

// CompleteRide finishes an in-progress ride and settles the fare.
func (h *RideHandler) CompleteRide(c *gin.Context) {
	driverID, ok := actorID(c)
	if !ok {
		return
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Every field is optional, so a bare POST is fine.
	var body validators.CompleteRideBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&body); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	req := &services.CompleteRideRequest{
		RideID:            rideID,
		DriverID:          driverID,
		ActualDistanceKM:  body.ActualDistanceKM,
		ActualDurationMin: body.ActualDurationMin,
		PaymentMethod:     models.PaymentMethod(body.PaymentMethod),
	}
	if body.FinalFare != "" {
		fare, err := models.ParseMoney(body.FinalFare)
		if err != nil {
			utils.BadRequestResponse(c, err.Error())
			return
		}
		req.FinalFare = &fare
	}

	ride, err := h.rideService.Complete(c.Request.Context(), req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride completed successfully", ride)
}

// CancelRide cancels a pending or accepted ride.
func (h *RideHandler) CancelRide(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body validators.CancelRideBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.Cancel(c.Request.Context(), &services.CancelRideRequest{
		RideID:  rideID,
		ActorID: userID,
		Actor:   models.CancelActor(c.GetString("user_type")),
		Reason:  body.Reason,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride cancelled successfully", ride)
}

// GetRide returns one ride by id.
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ride, err := h.rideService.Get(c.Request.Context(), rideID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved successfully", ride)
}

// ListRides returns the calling actor's ride history, optionally narrowed by
// status and a requested-at date range.
func (h *RideHandler) ListRides(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	req := &services.ListRidesRequest{Params: utils.GetPaginationParams(c)}
	switch c.GetString("user_type") {
	case "driver":
		req.DriverID = &userID
	default:
		req.RiderID = &userID
	}

	if v := c.Query("status"); v != "" {
		status := models.RideStatus(v)
		req.Status = &status
	}

	from, to, err := utils.ParseDateRange(c)
	if err != nil {
		utils.BadRequestResponse(c, "invalid date range: "+err.Error())
		return
	}
	req.From, req.To = from, to

	rides, total, err := h.rideService.List(c.Request.Context(), req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", rides, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(req.Params, total),
	})
}
