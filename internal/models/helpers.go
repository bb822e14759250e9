package models

import (
	"time"

	"github.com/google/uuid"
)

func GeneratePlayID() string {
	return uuid.New().String()
}

// Normalize assigns an id when the client sent none and stamps the play
// with its creation time. Timestamps are kept in UTC at millisecond
// precision, the resolution of a BSON date.
func (p *GamePlay) Normalize(now time.Time) {
	if p.ID == "" {
		p.ID = GeneratePlayID()
	}
	p.Timestamp = now.UTC().Truncate(time.Millisecond)
}

func FormatTokens(w Wei) string {
	return w.Tokens().StringFixed(2)
}
