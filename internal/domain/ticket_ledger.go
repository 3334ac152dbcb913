package domain

import "context"

// SpendFunc computes a play against the locked state. It may mutate
// CollectedCards; returning an error aborts the spend with no changes.
type SpendFunc func(state *GameState) error

type TicketLedger interface {
	Balance(ctx context.Context, phone string) (TicketBalance, error)
	// Spend consumes exactly one ticket. The availability check, apply and
	// the write happen as one atomic unit per phone.
	Spend(ctx context.Context, phone string, apply SpendFunc) (TicketBalance, error)
	Grant(ctx context.Context, phone string, count int64) (TicketBalance, error)
	Delete(ctx context.Context, phone string) error
	ListStates(ctx context.Context) ([]*GameState, error)
}
