package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/services"
)

const StateSourceHeader = "X-Game-State-Source"

type GameHandler struct {
	state   *services.GameStateService
	history *services.HistoryService
	logger  *zap.Logger
}

func NewGameHandler(state *services.GameStateService, history *services.HistoryService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		state:   state,
		history: history,
		logger:  logger,
	}
}

func (h *GameHandler) GetGameState(c *gin.Context) {
	state, source, err := h.state.GetGameState(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "game.state", err)
		return
	}

	c.Header(StateSourceHeader, source)
	c.JSON(http.StatusOK, state)
}

func (h *GameHandler) GetSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"slot_count": models.SlotCount,
		"slots":      models.PayoutTable(),
	})
}

func (h *GameHandler) GetGameHistory(c *gin.Context) {
	raw := c.DefaultQuery("limit", strconv.FormatInt(services.DefaultHistoryLimit, 10))
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondInvalid(c, errors.New("limit must be an integer"))
		return
	}
	if limit < 0 {
		respondInvalid(c, errors.New("limit must not be negative"))
		return
	}

	plays, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, "game.history", err)
		return
	}
	if plays == nil {
		plays = []*models.GamePlay{}
	}

	c.JSON(http.StatusOK, plays)
}

func (h *GameHandler) RecordPlay(c *gin.Context) {
	var req models.RecordPlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.history.RecordPlay(c.Request.Context(), req.ToPlay()); err != nil {
		respondError(c, h.logger, "game.record", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) GetStats(c *gin.Context) {
	stats, err := h.history.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "game.stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
