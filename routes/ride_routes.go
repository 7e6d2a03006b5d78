package routes

import (
	"ridelink/internal/handlers"
	"ridelink/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes registers the ride lifecycle endpoints.
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, negotiationHandler *handlers.NegotiationHandler) {
	rides := r.Group("/rides")
	rides.Use(middleware.ActorRequired())
	{
		rides.POST("", middleware.RiderRequired(), rideHandler.CreateRide)
		rides.GET("", rideHandler.ListRides)
		rides.GET("/:id", rideHandler.GetRide)

		rides.POST("/:id/accept", middleware.DriverRequired(), rideHandler.AcceptRide)
		rides.POST("/:id/start", middleware.DriverRequired(), rideHandler.StartRide)
		rides.POST("/:id/complete", middleware.DriverRequired(), rideHandler.CompleteRide)
		rides.POST("/:id/cancel", rideHandler.CancelRide)

		rides.POST("/:id/negotiations", middleware.RiderRequired(), negotiationHandler.ProposeNegotiation)
		rides.GET("/:id/negotiations", negotiationHandler.ListRideNegotiations)
	}

	negotiations := r.Group("/negotiations")
	negotiations.Use(middleware.ActorRequired(), middleware.DriverRequired())
	{
		negotiations.POST("/:id/respond", negotiationHandler.RespondNegotiation)
	}
}
