package models

import "time"

// GamePlay is one resolved drop as reported by the frontend after the
// on-chain transaction settled.
type GamePlay struct {
	ID            string    `json:"id" bson:"id" redis:"id"`
	PlayerAddress string    `json:"player_address" bson:"player_address" redis:"player_address"`
	Slot          int       `json:"slot" bson:"slot" redis:"slot"`
	Payout        float64   `json:"payout" bson:"payout" redis:"payout"`
	IsJackpot     bool      `json:"is_jackpot" bson:"is_jackpot" redis:"is_jackpot"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp" redis:"timestamp"`
}

// RecordPlayRequest is the POST /api/game/record body. Pointers tell a
// missing field apart from a zero slot or payout. The timestamp is always
// the server's; a client-sent one is ignored.
type RecordPlayRequest struct {
	ID            string   `json:"id" binding:"omitempty,max=128"`
	PlayerAddress string   `json:"player_address" binding:"required"`
	Slot          *int     `json:"slot" binding:"required,min=0,max=19"`
	Payout        *float64 `json:"payout" binding:"required,min=0"`
	IsJackpot     bool     `json:"is_jackpot"`
}

func (r *RecordPlayRequest) ToPlay() *GamePlay {
	play := &GamePlay{
		ID:            r.ID,
		PlayerAddress: r.PlayerAddress,
		IsJackpot:     r.IsJackpot,
	}
	if r.Slot != nil {
		play.Slot = *r.Slot
	}
	if r.Payout != nil {
		play.Payout = *r.Payout
	}
	return play
}

// PlayTotals is what a history store aggregates.
type PlayTotals struct {
	TotalPlays   int64   `json:"total_plays"`
	TotalPayouts float64 `json:"total_payouts"`
	JackpotWins  int64   `json:"jackpot_wins"`
}

type PlayStats struct {
	PlayTotals
	WinRate float64 `json:"win_rate"`
}

type InsightRequest struct {
	Query string `json:"query" binding:"required"`
}

type InsightResponse struct {
	Insight string `json:"insight"`
}

type HealthStatus struct {
	Status             string `json:"status"`
	Web3Connected      bool   `json:"web3_connected"`
	ContractConfigured bool   `json:"contract_configured"`
	StoreConnected     bool   `json:"store_connected"`
}
