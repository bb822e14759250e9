package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/services"
)

type InsightHandler struct {
	insight *services.InsightService
	logger  *zap.Logger
}

func NewInsightHandler(insight *services.InsightService, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		insight: insight,
		logger:  logger,
	}
}

func (h *InsightHandler) GetInsight(c *gin.Context) {
	var req models.InsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		respondInvalid(c, errors.New("query must not be blank"))
		return
	}

	answer, err := h.insight.Insight(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, "ai.insight", err)
		return
	}

	c.JSON(http.StatusOK, models.InsightResponse{Insight: answer})
}
