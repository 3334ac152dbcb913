package domain

import "time"

const CollectionSize = 11

type GameState struct {
	Phone          string
	CollectedCards []int
	UsedTickets    int64
	BonusTickets   int64
	UpdatedAt      time.Time
}

func (s *GameState) HasCard(id int) bool {
	for _, c := range s.CollectedCards {
		if c == id {
			return true
		}
	}
	return false
}

func (s *GameState) IsComplete() bool {
	return len(s.CollectedCards) >= CollectionSize
}

// TicketBalance is the derived view of a phone's tickets. Available is
// computed on every read and never stored.
type TicketBalance struct {
	Phone          string
	OrderTickets   int64
	BonusTickets   int64
	UsedTickets    int64
	CollectedCards []int
	HasState       bool
}

func (b TicketBalance) Total() int64 {
	return b.OrderTickets + b.BonusTickets
}

func (b TicketBalance) Available() int64 {
	return b.Total() - b.UsedTickets
}

type Card struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Prize struct {
	Name   string `json:"name" yaml:"name"`
	Weight int64  `json:"weight" yaml:"weight"`
}
