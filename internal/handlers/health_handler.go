package handlers

import (
	"context"
	"net/http"
	"time"

	"ridelink/internal/utils"
	"ridelink/pkg/cache"
	"ridelink/pkg/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db    *database.MongoDB
	cache *cache.RedisCache
}

func NewHealthHandler(db *database.MongoDB, redisCache *cache.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, cache: redisCache}
}

func (h *HealthHandler) Health(c *gin.Context) {
	checks := gin.H{"mongodb": "ok", "redis": "ok"}
	healthy := true

	if err := h.db.Ping(); err != nil {
		checks["mongodb"] = err.Error()
		healthy = false
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, err := h.cache.Exists(ctx, "health"); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	} else {
		checks["redis"] = "disabled"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}

	utils.SuccessResponse(c, "healthy", gin.H{
		"version": utils.AppVersion,
		"checks":  checks,
	})
}
