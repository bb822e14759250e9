package services

import "github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"

type Broadcaster interface {
	BroadcastPlay(play *models.GamePlay)
}
