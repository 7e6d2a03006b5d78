package routes

import (
	"ridelink/internal/handlers"
	"ridelink/internal/middleware"
	"ridelink/pkg/logger"
	"ridelink/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRouter assembles the HTTP surface: middleware, health, the live-update
// upgrade endpoint and the versioned API groups.
func SetupRouter(
	log *logger.Logger,
	healthHandler *handlers.HealthHandler,
	rideHandler *handlers.RideHandler,
	negotiationHandler *handlers.NegotiationHandler,
	matchingHandler *handlers.MatchingHandler,
	paymentHandler *handlers.PaymentHandler,
	wsHandler *websocket.Handler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware(log))

	router.GET("/health", healthHandler.Health)
	router.GET("/ws", wsHandler.HandleWebSocket)

	v1 := router.Group("/api/v1")
	SetupRideRoutes(v1, rideHandler, negotiationHandler)
	SetupMatchingRoutes(v1, matchingHandler)
	SetupPaymentRoutes(v1, paymentHandler)

	return router
}
