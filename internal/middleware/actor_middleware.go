package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActorRequired reads the calling actor from the X-User-ID and X-User-Type
// headers and puts them on the request context. Identity verification happens
// upstream of this service; the engine only needs to know who is acting.
func ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := primitive.ObjectIDFromHex(c.GetHeader("X-User-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  gin.H{"code": "MISSING_ACTOR", "message": "X-User-ID header is required"},
			})
			return
		}

		userType := c.GetHeader("X-User-Type")
		if userType != "rider" && userType != "driver" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  gin.H{"code": "MISSING_ACTOR", "message": "X-User-Type must be rider or driver"},
			})
			return
		}

		c.Set("user_id", userID)
		c.Set("user_type", userType)
		c.Next()
	}
}

// RiderRequired restricts a route to rider actors.
func RiderRequired() gin.HandlerFunc {
	return requireUserType("rider")
}

// DriverRequired restricts a route to driver actors.
func DriverRequired() gin.HandlerFunc {
	return requireUserType("driver")
}

func requireUserType(want string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_type") != want {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status": "error",
				"error":  gin.H{"code": "FORBIDDEN", "message": "this operation requires a " + want + " actor"},
			})
			return
		}
		c.Next()
	}
}
