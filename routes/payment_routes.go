package routes

import (
	"ridelink/internal/handlers"
	"ridelink/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes registers the settlement and wallet endpoints.
func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	payments := r.Group("/payments")
	payments.Use(middleware.ActorRequired())
	{
		payments.POST("/:id/process", paymentHandler.ProcessPayment)
		payments.POST("/:id/refund", paymentHandler.RefundPayment)
	}

	rides := r.Group("/rides")
	rides.Use(middleware.ActorRequired())
	{
		rides.GET("/:id/payment", paymentHandler.GetRidePayment)
	}

	wallet := r.Group("/wallet")
	wallet.Use(middleware.ActorRequired())
	{
		wallet.GET("/balance", paymentHandler.GetWalletBalance)
		wallet.GET("/transactions", paymentHandler.GetWalletTransactions)
	}
}
