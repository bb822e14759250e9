package services

import (
	"context"
	"fmt"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/config"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
)

const (
	DefaultHistoryLimit int64 = 50
	MaxHistoryLimit     int64 = 100
	// insightHistoryLimit is how many plays feed the insight context.
	insightHistoryLimit int64 = 100
)

// HistoryStore is the append-only record of plays. Implementations never
// update or delete a play.
type HistoryStore interface {
	RecordPlay(ctx context.Context, play *models.GamePlay) error
	// ListRecent returns at most limit plays, newest timestamp first.
	ListRecent(ctx context.Context, limit int64) ([]*models.GamePlay, error)
	AggregateStats(ctx context.Context) (*models.PlayTotals, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewHistoryStore connects to the backend named by the store URL scheme.
func NewHistoryStore(ctx context.Context, cfg *config.Config) (HistoryStore, error) {
	kind, err := cfg.StoreKind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case config.StoreMongo:
		return NewMongoHistoryStore(ctx, cfg.StoreURL, cfg.DBName)
	case config.StoreRedis:
		return NewRedisService(ctx, cfg.StoreURL, cfg.DBName)
	default:
		return nil, fmt.Errorf("unsupported store kind %q", kind)
	}
}

// ClampLimit bounds a requested history size to [0, max].
func ClampLimit(limit, max int64) int64 {
	if max <= 0 {
		max = MaxHistoryLimit
	}
	if limit < 0 {
		limit = 0
	}
	if limit > max {
		limit = max
	}
	return limit
}
