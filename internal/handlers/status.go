package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/services"
)

const statusCheckTimeout = 3 * time.Second

// ChainStatus reports on the contract reader. *services.ChainReader
// satisfies it.
type ChainStatus interface {
	Configured() bool
	Connected(ctx context.Context) bool
}

type StatusHandler struct {
	chain   ChainStatus
	history *services.HistoryService
}

func NewStatusHandler(chain ChainStatus, history *services.HistoryService) *StatusHandler {
	return &StatusHandler{
		chain:   chain,
		history: history,
	}
}

func (h *StatusHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "PulseChain Plinko Game API"})
}

func (h *StatusHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusCheckTimeout)
	defer cancel()

	status := models.HealthStatus{Status: "online"}
	if h.chain != nil {
		status.ContractConfigured = h.chain.Configured()
		status.Web3Connected = h.chain.Connected(ctx)
	}
	status.StoreConnected = h.history.StoreConnected(ctx)

	c.JSON(http.StatusOK, status)
}
