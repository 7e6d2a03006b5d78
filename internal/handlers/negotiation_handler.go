package handlers

import (
	"ridelink/internal/models"
	"ridelink/internal/services"
	"ridelink/internal/utils"
	"ridelink/internal/validators"

	"github.com/gin-gonic/gin"
)

type NegotiationHandler struct {
	negotiationService services.NegotiationService
}

func NewNegotiationHandler(negotiationService services.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{negotiationService: negotiationService}
}

// ProposeNegotiation opens a counter-offer on a pending ride.
func (h *NegotiationHandler) ProposeNegotiation(c *gin.Context) {
	riderID, ok := actorID(c)
	if !ok {
		return
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body validators.ProposeNegotiationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&body); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	fare, err := models.ParseMoney(body.ProposedFare)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	negotiation, err := h.negotiationService.Propose(c.Request.Context(), rideID, riderID, fare)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Negotiation proposed successfully", negotiation)
}

// RespondNegotiation accepts or rejects an open counter-offer.
func (h *NegotiationHandler) RespondNegotiation(c *gin.Context) {
	driverID, ok := actorID(c)
	if !ok {
		return
	}
	negotiationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body validators.RespondNegotiationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&body); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	negotiation, err := h.negotiationService.Respond(c.Request.Context(), negotiationID, driverID, body.Action == "accept")
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Negotiation updated successfully", negotiation)
}

// ListRideNegotiations returns a ride's negotiation history.
func (h *NegotiationHandler) ListRideNegotiations(c *gin.Context) {
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	negotiations, err := h.negotiationService.ListForRide(c.Request.Context(), rideID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Negotiations retrieved successfully", negotiations)
}
