package gamedto

import "github.com/LavaJover/festival-order-service/internal/domain"

type GameStateOutput struct {
	Phone            string        `json:"phone"`
	HasState         bool          `json:"hasState"`
	CollectedCards   []int         `json:"collectedCards"`
	Cards            []domain.Card `json:"cards"`
	UsedTickets      int64         `json:"usedTickets"`
	BonusTickets     int64         `json:"bonusTickets"`
	TotalTickets     int64         `json:"totalTickets"`
	AvailableTickets int64         `json:"availableTickets"`
	IsComplete       bool          `json:"isComplete"`
}

type WheelOutput struct {
	PrizeIndex       int          `json:"prizeIndex"`
	Prize            domain.Prize `json:"prize"`
	UsedTickets      int64        `json:"usedTickets"`
	AvailableTickets int64        `json:"availableTickets"`
}

type CardFlipOutput struct {
	Card             domain.Card `json:"card"`
	IsNew            bool        `json:"isNew"`
	CollectedCards   []int       `json:"collectedCards"`
	UsedTickets      int64       `json:"usedTickets"`
	AvailableTickets int64       `json:"availableTickets"`
	IsComplete       bool        `json:"isComplete"`
}

type GameStatOutput struct {
	Phone            string `json:"phone"`
	TotalTickets     int64  `json:"totalTickets"`
	UsedTickets      int64  `json:"usedTickets"`
	RemainingTickets int64  `json:"remainingTickets"`
	BonusTickets     int64  `json:"bonusTickets"`
	CollectedCount   int    `json:"collectedCount"`
	CollectedCards   []int  `json:"collectedCards"`
}
