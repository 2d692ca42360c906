package api

import (
	"log/slog"
	"net/http"

	"github.com/autohof/settlement-bot/internal/tasks"
	"github.com/gin-gonic/gin"
)

// StatusHandler serves the recent task run history.
type StatusHandler struct {
	logger  *slog.Logger
	tracker *tasks.RunTracker
}

// NewStatusHandler creates a handler backed by the given run tracker.
func NewStatusHandler(logger *slog.Logger, tracker *tasks.RunTracker) *StatusHandler {
	return &StatusHandler{
		logger:  logger,
		tracker: tracker,
	}
}

// Runs handles GET /api/v1/runs, returning recent task runs newest first.
func (h *StatusHandler) Runs(c *gin.Context) {
	runs := h.tracker.Recent()
	c.JSON(http.StatusOK, gin.H{
		"count": len(runs),
		"runs":  runs,
	})
}
