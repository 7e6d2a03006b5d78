package routes

import (
	"ridelink/internal/handlers"
	"ridelink/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupMatchingRoutes registers the geospatial matching endpoints.
func SetupMatchingRoutes(r *gin.RouterGroup, matchingHandler *handlers.MatchingHandler) {
	matching := r.Group("/matching")
	matching.Use(middleware.ActorRequired())
	{
		matching.GET("/drivers", matchingHandler.NearbyDrivers)
		matching.GET("/rides", middleware.DriverRequired(), matchingHandler.AvailableRides)
	}

	drivers := r.Group("/drivers")
	drivers.Use(middleware.ActorRequired(), middleware.DriverRequired())
	{
		drivers.PUT("/location", matchingHandler.UpdateLocation)
	}
}
