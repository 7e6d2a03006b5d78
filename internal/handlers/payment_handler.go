package handlers

import (
	"ridelink/internal/services"
	"ridelink/internal/utils"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
	walletService  services.WalletService
}

func NewPaymentHandler(paymentService services.PaymentService, walletService services.WalletService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		walletService:  walletService,
	}
}

// ProcessPayment settles a pending payment according to its method.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.Process(c.Request.Context(), paymentID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment processed successfully", payment)
}

// RefundPayment reverses a paid payment.
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "invalid request: "+err.Error())
		return
	}

	payment, err := h.paymentService.Refund(c.Request.Context(), paymentID, body.Reason)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment refunded successfully", payment)
}

// GetRidePayment returns the settlement record for a ride.
func (h *PaymentHandler) GetRidePayment(c *gin.Context) {
	rideID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByRide(c.Request.Context(), rideID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment retrieved successfully", payment)
}

// GetWalletBalance returns the calling user's wallet balance.
func (h *PaymentHandler) GetWalletBalance(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	balance, err := h.walletService.Balance(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Balance retrieved successfully", gin.H{"balance": balance.String()})
}

// GetWalletTransactions returns the calling user's recent ledger entries.
func (h *PaymentHandler) GetWalletTransactions(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	limit := parseQueryInt(c, "limit", utils.DefaultPageSize)

	transactions, err := h.walletService.Transactions(c.Request.Context(), userID, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Transactions retrieved successfully", transactions)
}
