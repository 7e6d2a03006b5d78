package handlers

import (
	"net/http"
	"strconv"

	"ridelink/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actorID pulls the authenticated actor off the context. It writes the error
// response itself so callers can return on the false branch.
func actorID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor identity")
		return primitive.NilObjectID, false
	}

	id, ok := value.(primitive.ObjectID)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid actor identity")
		return primitive.NilObjectID, false
	}

	return id, true
}

// parseQueryInt reads an optional positive integer query param with a fallback.
func parseQueryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// parseQueryFloat reads an optional positive float query param with a fallback.
func parseQueryFloat(c *gin.Context, name string, fallback float64) float64 {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// parseCoord reads a required coordinate query param. Coordinates are signed,
// so no positivity fallback applies; it writes the error response on failure.
func parseCoord(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		utils.BadRequestResponse(c, name+" query param is required")
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		utils.BadRequestResponse(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// pathID parses an ObjectID path parameter, writing the error response on
// failure.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
