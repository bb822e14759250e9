package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/middleware"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/services"
)

type RouterDeps struct {
	Logger      *zap.Logger
	CORSOrigins []string
	Chain       ChainStatus
	State       *services.GameStateService
	History     *services.HistoryService
	Insight     *services.InsightService
	Hub         *WebSocketHub
}

// NewRouter registers every route. The hub, when set, is attached to the
// history service so recorded plays reach websocket clients.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := middleware.NewOriginPolicy(deps.CORSOrigins)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(policy))

	statusHandler := NewStatusHandler(deps.Chain, deps.History)
	gameHandler := NewGameHandler(deps.State, deps.History, logger)
	insightHandler := NewInsightHandler(deps.Insight, logger)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/", statusHandler.Root)
		api.GET("/status", statusHandler.Status)
		api.GET("/stats", gameHandler.GetStats)

		game := api.Group("/game")
		{
			game.GET("/state", gameHandler.GetGameState)
			game.GET("/slots", gameHandler.GetSlots)
			game.GET("/history", gameHandler.GetGameHistory)
			game.POST("/record", gameHandler.RecordPlay)
		}

		ai := api.Group("/ai")
		{
			ai.POST("/insight", insightHandler.GetInsight)
		}

		if deps.Hub != nil {
			deps.History.SetBroadcaster(deps.Hub)
			wsHandler := NewWebSocketHandler(deps.Hub, deps.State, policy.Allows, logger)
			api.GET("/ws", wsHandler.HandleWebSocket)
		}
	}

	return router
}
