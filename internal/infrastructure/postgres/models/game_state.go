package models

import (
	"time"

	"gorm.io/datatypes"
)

type GameStateModel struct {
	Phone          string                   `gorm:"primaryKey;size:32"`
	CollectedCards datatypes.JSONSlice[int] `gorm:"not null"`
	UsedTickets    int64                    `gorm:"not null;default:0"`
	BonusTickets   int64                    `gorm:"not null;default:0"`
	UpdatedAt      time.Time
}

func (GameStateModel) TableName() string {
	return "game_states"
}

// TicketSum is the row shape of per-phone ticket aggregates.
type TicketSum struct {
	Phone   string
	Tickets int64
}
