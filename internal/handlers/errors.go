package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/services"
)

// respondError maps a service error to a status and a generic message. The
// error itself is logged, never sent.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, services.ErrInsightUnavailable):
		status, message = http.StatusServiceUnavailable, "AI insights are not configured"
	case errors.Is(err, services.ErrChainRead), errors.Is(err, services.ErrStateDecode):
		message = "Failed to read game state"
	case errors.Is(err, services.ErrStore):
		message = "Failed to access game history"
	case errors.Is(err, services.ErrUpstream):
		message = "Failed to generate insight"
	}

	logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err))
	c.JSON(status, gin.H{"error": message})
}

func respondInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": err.Error(),
	})
}
