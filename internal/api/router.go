package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// setupRouter configures the status routes and middleware
func setupRouter(logger *slog.Logger, r *gin.Engine, statusHandler *StatusHandler) {
	r.Use(Recovery(logger))
	r.Use(Logger(logger))
	r.Use(CorrelationID())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/runs", statusHandler.Runs)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
