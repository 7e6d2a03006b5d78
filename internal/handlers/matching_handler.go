package handlers

import (
	"ridelink/internal/services"
	"ridelink/internal/utils"
	"ridelink/internal/validators"

	"github.com/gin-gonic/gin"
)

type MatchingHandler struct {
	matchingService services.MatchingService
}

func NewMatchingHandler(matchingService services.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingService: matchingService}
}

// NearbyDrivers returns available drivers around a point, nearest first.
func (h *MatchingHandler) NearbyDrivers(c *gin.Context) {
	lat, ok := parseCoord(c, "lat")
	if !ok {
		return
	}
	lng, ok := parseCoord(c, "lng")
	if !ok {
		return
	}

	radius := parseQueryFloat(c, "radius", utils.DefaultSearchRadius)
	if radius > utils.MaxSearchRadius {
		radius = utils.MaxSearchRadius
	}
	limit := parseQueryInt(c, "limit", utils.DefaultSearchLimit)

	matches, err := h.matchingService.NearbyDrivers(c.Request.Context(), lat, lng, radius, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Nearby drivers retrieved successfully", matches)
}

// AvailableRides returns dispatchable rides around the calling driver.
func (h *MatchingHandler) AvailableRides(c *gin.Context) {
	driverID, ok := actorID(c)
	if !ok {
		return
	}

	lat, ok := parseCoord(c, "lat")
	if !ok {
		return
	}
	lng, ok := parseCoord(c, "lng")
	if !ok {
		return
	}

	radius := parseQueryFloat(c, "radius", utils.DefaultSearchRadius)
	if radius > utils.MaxSearchRadius {
		radius = utils.MaxSearchRadius
	}
	limit := parseQueryInt(c, "limit", utils.DefaultSearchLimit)

	matches, err := h.matchingService.AvailableRides(c.Request.Context(), driverID, lat, lng, radius, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Available rides retrieved successfully", matches)
}

// UpdateLocation records the calling driver's current position.
func (h *MatchingHandler) UpdateLocation(c *gin.Context) {
	driverID, ok := actorID(c)
	if !ok {
		return
	}

	var body validators.LocationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&body); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	err := h.matchingService.UpdateDriverLocation(c.Request.Context(), driverID, body.Latitude, body.Longitude, body.Address)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", nil)
}
