// Package fakes holds in-memory stand-ins for the service collaborators.
package fakes

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
)

// HistoryStore is an in-memory services.HistoryStore.
type HistoryStore struct {
	mu    sync.Mutex
	plays []*models.GamePlay
	// Err, when set, is returned from every call.
	Err error
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) RecordPlay(_ context.Context, play *models.GamePlay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	cp := *play
	s.plays = append(s.plays, &cp)
	return nil
}

func (s *HistoryStore) ListRecent(_ context.Context, limit int64) ([]*models.GamePlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	ordered := make([]*models.GamePlay, len(s.plays))
	for i, p := range s.plays {
		ordered[len(s.plays)-1-i] = p
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.After(ordered[j].Timestamp)
	})

	if limit < int64(len(ordered)) {
		ordered = ordered[:limit]
	}
	out := make([]*models.GamePlay, len(ordered))
	for i, p := range ordered {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}

func (s *HistoryStore) AggregateStats(_ context.Context) (*models.PlayTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	totals := &models.PlayTotals{}
	for _, p := range s.plays {
		totals.TotalPlays++
		totals.TotalPayouts += p.Payout
		if p.IsJackpot {
			totals.JackpotWins++
		}
	}
	return totals, nil
}

func (s *HistoryStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Err
}

func (s *HistoryStore) Close(_ context.Context) error {
	return nil
}

func (s *HistoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.plays)
}

// StateReader is a services.StateReader returning a canned tuple.
type StateReader struct {
	Unconfigured bool
	Tuple        []interface{}
	Err          error
	Calls        int
}

func (r *StateReader) Configured() bool {
	return !r.Unconfigured
}

func (r *StateReader) ReadState(_ context.Context) ([]interface{}, error) {
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Tuple, nil
}

// GameStateTuple builds a getGameState() tuple in contract order.
func GameStateTuple(main, mini, plays, dao, dev, entry int64, finalized bool) []interface{} {
	return []interface{}{
		big.NewInt(main),
		big.NewInt(mini),
		big.NewInt(plays),
		big.NewInt(dao),
		big.NewInt(dev),
		big.NewInt(entry),
		finalized,
	}
}

// TextGenerator records prompts and replies with Reply or Err.
type TextGenerator struct {
	Reply   string
	Err     error
	Systems []string
	Prompts []string
}

func (g *TextGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	g.Systems = append(g.Systems, system)
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Reply, nil
}

var ErrNoFixture = errors.New("no fixture configured")

// ChainBackend answers eth_call with ABI-packed output so the real
// bind/abi decoding path runs in tests.
type ChainBackend struct {
	mu       sync.Mutex
	Output   []byte
	CallErr  error
	ChainErr error
	Calls    []ethereum.CallMsg
}

// PackGameState encodes tuple as the getGameState() return data for parsed.
func PackGameState(parsed abi.ABI, tuple []interface{}) ([]byte, error) {
	method, ok := parsed.Methods["getGameState"]
	if !ok {
		return nil, errors.New("abi has no getGameState")
	}
	return method.Outputs.Pack(tuple...)
}

func (b *ChainBackend) CodeAt(_ context.Context, _ common.Address, _ *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (b *ChainBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Calls = append(b.Calls, call)
	if b.CallErr != nil {
		return nil, b.CallErr
	}
	if b.Output == nil {
		return nil, ErrNoFixture
	}
	return b.Output, nil
}

func (b *ChainBackend) ChainID(_ context.Context) (*big.Int, error) {
	if b.ChainErr != nil {
		return nil, b.ChainErr
	}
	return big.NewInt(369), nil
}
