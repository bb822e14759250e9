package models

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the fixed-point scale of every on-chain amount.
const TokenDecimals = 18

// Wei is a non-negative uint256 amount. It encodes to JSON as a base-10
// string because the value does not fit a JSON number.
type Wei struct {
	*big.Int
}

func NewWei(v *big.Int) Wei {
	if v == nil {
		return Wei{Int: new(big.Int)}
	}
	return Wei{Int: new(big.Int).Set(v)}
}

// WeiFromTokens parses a decimal token amount such as "52341.5".
func WeiFromTokens(tokens string) (Wei, error) {
	d, err := decimal.NewFromString(tokens)
	if err != nil {
		return Wei{}, fmt.Errorf("invalid token amount %q: %w", tokens, err)
	}
	if d.IsNegative() {
		return Wei{}, fmt.Errorf("negative token amount %q", tokens)
	}
	return Wei{Int: d.Shift(TokenDecimals).BigInt()}, nil
}

func mustWei(tokens string) Wei {
	w, err := WeiFromTokens(tokens)
	if err != nil {
		panic(err)
	}
	return w
}

// Tokens converts the amount to whole-token units.
func (w Wei) Tokens() decimal.Decimal {
	if w.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(w.Int, -TokenDecimals)
}

func (w Wei) String() string {
	if w.Int == nil {
		return "0"
	}
	return w.Int.String()
}

func (w Wei) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(w.String())), nil
}

func (w *Wei) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid wei amount %s", data)
	}
	if v.Sign() < 0 {
		return fmt.Errorf("negative wei amount %s", data)
	}
	w.Int = v
	return nil
}

// GameState mirrors getGameState() on the PlinkoGame369 contract in the
// order the contract returns it.
type GameState struct {
	MainJackpot Wei    `json:"main_jackpot"`
	MiniJackpot Wei    `json:"mini_jackpot"`
	PlayCount   uint64 `json:"play_count"`
	DAOAccrued  Wei    `json:"dao_accrued"`
	DevAccrued  Wei    `json:"dev_accrued"`
	EntryPrice  Wei    `json:"entry_price"`
	Finalized   bool   `json:"finalized"`
}

const (
	StateSourceChain = "chain"
	StateSourceMock  = "mock"
)

// MockGameState is the development fallback served when no contract is
// configured. It is not live data.
func MockGameState() *GameState {
	return &GameState{
		MainJackpot: mustWei("52341.5"),
		MiniJackpot: mustWei("8762.3"),
		PlayCount:   52341,
		DAOAccrued:  mustWei("261.71"),
		DevAccrued:  mustWei("87.24"),
		EntryPrice:  mustWei("10"),
		Finalized:   false,
	}
}
