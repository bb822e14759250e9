package services

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/monitoring"
)

type StateReader interface {
	Configured() bool
	ReadState(ctx context.Context) ([]interface{}, error)
}

type GameStateService struct {
	reader StateReader
	logger *zap.Logger
}

func NewGameStateService(reader StateReader, logger *zap.Logger) *GameStateService {
	return &GameStateService{
		reader: reader,
		logger: logger,
	}
}

// GetGameState returns the live contract state and "chain", or the mock and
// "mock" when no contract is configured. A configured reader that fails is
// an error; it is never masked with mock data.
func (s *GameStateService) GetGameState(ctx context.Context) (*models.GameState, string, error) {
	if s.reader == nil || !s.reader.Configured() {
		monitoring.ChainReads.WithLabelValues("mock").Inc()
		return models.MockGameState(), models.StateSourceMock, nil
	}

	tuple, err := s.reader.ReadState(ctx)
	if err != nil {
		return nil, "", err
	}

	state, err := NormalizeGameState(tuple)
	if err != nil {
		s.logger.Error("failed to decode game state",
			zap.String("op", "state.normalize"), zap.Error(err))
		return nil, "", err
	}
	return state, models.StateSourceChain, nil
}

// NormalizeGameState maps the getGameState() tuple by position:
// mainJackpot, miniJackpot, playCount, daoAccrued, devAccrued, entryPrice,
// finalized.
func NormalizeGameState(tuple []interface{}) (*models.GameState, error) {
	if len(tuple) != len(gameStateOutputs) {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrStateDecode, len(tuple), len(gameStateOutputs))
	}

	amounts := make([]*big.Int, 6)
	for i := range amounts {
		v, ok := tuple[i].(*big.Int)
		if !ok || v == nil {
			return nil, fmt.Errorf("%w: value %d is %T, want *big.Int", ErrStateDecode, i, tuple[i])
		}
		if v.Sign() < 0 {
			return nil, fmt.Errorf("%w: value %d is negative", ErrStateDecode, i)
		}
		amounts[i] = v
	}
	if !amounts[2].IsUint64() {
		return nil, fmt.Errorf("%w: play count %s overflows uint64", ErrStateDecode, amounts[2])
	}

	finalized, ok := tuple[6].(bool)
	if !ok {
		return nil, fmt.Errorf("%w: value 6 is %T, want bool", ErrStateDecode, tuple[6])
	}

	return &models.GameState{
		MainJackpot: models.NewWei(amounts[0]),
		MiniJackpot: models.NewWei(amounts[1]),
		PlayCount:   amounts[2].Uint64(),
		DAOAccrued:  models.NewWei(amounts[3]),
		DevAccrued:  models.NewWei(amounts[4]),
		EntryPrice:  models.NewWei(amounts[5]),
		Finalized:   finalized,
	}, nil
}
