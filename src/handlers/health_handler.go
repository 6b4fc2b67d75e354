package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

const healthTimeout = 3 * time.Second

// PingFunc adapts a function to models.HealthChecker.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message"`
}

type HealthHandler struct {
	database    models.HealthChecker
	redis       models.HealthChecker
	environment string
}

func NewHealthHandler(database, redis models.HealthChecker, environment string) *HealthHandler {
	return &HealthHandler{
		database:    database,
		redis:       redis,
		environment: environment,
	}
}

func check(ctx context.Context, checker models.HealthChecker, okMessage string) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := checker.Ping(ctx); err != nil {
		return ComponentHealth{Healthy: false, Message: err.Error()}
	}
	return ComponentHealth{Healthy: true, Message: okMessage}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	database := check(c.Request.Context(), h.database, "Database connection healthy")
	redis := check(c.Request.Context(), h.redis, "Redis connection healthy")

	status := "ok"
	if !database.Healthy || !redis.Healthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.environment,
		"database":    database,
		"redis":       redis,
	})
}

func (h *HealthHandler) DatabaseHealth(c *gin.Context) {
	c.JSON(http.StatusOK, check(c.Request.Context(), h.database, "Database connection healthy"))
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
}
