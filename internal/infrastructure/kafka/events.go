package kafka

import "time"

const (
	EventOrderPaid      = "order.paid"
	EventOrderExpired   = "order.expired"
	EventGamePlayed     = "game.played"
	EventTicketsGranted = "tickets.granted"
)

type OrderEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OrderCode  string    `json:"order_code"`
	Phone      string    `json:"phone,omitempty"`
	Total      int64     `json:"total,omitempty"`
	Tickets    int64     `json:"tickets,omitempty"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type GameEvent struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Phone            string    `json:"phone"`
	Game             string    `json:"game,omitempty"`
	Outcome          string    `json:"outcome,omitempty"`
	Count            int64     `json:"count,omitempty"`
	RemainingTickets int64     `json:"remaining_tickets"`
	OccurredAt       time.Time `json:"occurred_at"`
}
