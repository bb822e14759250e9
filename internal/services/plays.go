package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/monitoring"
)

// HistoryService applies server policy on top of a HistoryStore: ids and
// timestamps on record, the limit bound on reads, and the configured win
// rate on stats.
type HistoryService struct {
	store       HistoryStore
	broadcaster Broadcaster
	logger      *zap.Logger
	maxLimit    int64
	winRate     float64
	now         func() time.Time
}

type HistoryOptions struct {
	MaxLimit int64
	WinRate  float64
}

func NewHistoryService(store HistoryStore, logger *zap.Logger, opts HistoryOptions) *HistoryService {
	return &HistoryService{
		store:    store,
		logger:   logger,
		maxLimit: opts.MaxLimit,
		winRate:  opts.WinRate,
		now:      time.Now,
	}
}

// SetBroadcaster registers the live feed notified after each record.
func (s *HistoryService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *HistoryService) RecordPlay(ctx context.Context, play *models.GamePlay) error {
	play.Normalize(s.now())

	if err := s.store.RecordPlay(ctx, play); err != nil {
		s.logger.Error("failed to record game play",
			zap.String("op", "history.record"),
			zap.String("play_id", play.ID),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	monitoring.PlaysRecorded.Inc()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastPlay(play)
	}
	return nil
}

func (s *HistoryService) Recent(ctx context.Context, limit int64) ([]*models.GamePlay, error) {
	limit = ClampLimit(limit, s.maxLimit)
	if limit == 0 {
		return []*models.GamePlay{}, nil
	}

	plays, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list game history",
			zap.String("op", "history.list"),
			zap.Int64("limit", limit),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	if int64(len(plays)) > limit {
		plays = plays[:limit]
	}
	return plays, nil
}

func (s *HistoryService) Stats(ctx context.Context) (*models.PlayStats, error) {
	totals, err := s.store.AggregateStats(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate play stats",
			zap.String("op", "history.stats"), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return &models.PlayStats{
		PlayTotals: *totals,
		WinRate:    s.winRate,
	}, nil
}

func (s *HistoryService) StoreConnected(ctx context.Context) bool {
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("history store ping failed",
			zap.String("op", "history.ping"), zap.Error(err))
		return false
	}
	return true
}
