package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/config"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/handlers"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/logger"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/monitoring"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/services"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := monitoring.Register(prometheus.DefaultRegisterer); err != nil {
		zl.Fatal("failed to register metrics", zap.Error(err))
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := services.NewHistoryStore(startCtx, cfg)
	if err != nil {
		zl.Fatal("failed to connect to history store", zap.String("op", "store.init"), zap.Error(err))
	}

	chain := services.NewChainReader(startCtx, services.ChainConfig{
		RPCURL:          cfg.RPCURL,
		ContractAddress: cfg.ContractAddress,
		ABIPath:         cfg.ContractABIPath,
		ABIJSON:         cfg.ContractABI,
	}, zl)
	defer chain.Close()

	var generator services.TextGenerator
	if cfg.LLMAPIKey != "" {
		generator = services.NewOpenAIGenerator(services.OpenAIConfig{
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
		})
	} else {
		zl.Info("LLM_API_KEY not set, AI insights disabled")
	}

	stateService := services.NewGameStateService(chain, zl)
	historyService := services.NewHistoryService(store, zl, services.HistoryOptions{
		MaxLimit: cfg.HistoryMaxLimit,
		WinRate:  cfg.WinRate,
	})
	insightService := services.NewInsightService(stateService, store, generator, zl)

	hub := handlers.NewWebSocketHub(zl)
	defer hub.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Logger:      zl,
		CORSOrigins: cfg.CORSOrigins,
		Chain:       chain,
		State:       stateService,
		History:     historyService,
		Insight:     insightService,
		Hub:         hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	hub.Stop()

	ctx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
	if err := store.Close(ctx); err != nil {
		zl.Error("history store close failed", zap.String("op", "store.close"), zap.Error(err))
	}
}
