package domain

import (
	"context"
	"time"
)

type OrderRepository interface {
	// Upsert inserts the order or, when the code already exists, updates only
	// Status and Delivered. A paid order is never moved back to pending.
	Upsert(ctx context.Context, order *Order) (*Order, error)
	GetByCode(ctx context.Context, orderCode string) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListPending(ctx context.Context) ([]*Order, error)
	// MarkPaid flips a pending order to paid and reports whether this call
	// performed the transition.
	MarkPaid(ctx context.Context, orderCode string) (bool, error)
	SetDelivered(ctx context.Context, orderCode string, delivered bool) (*Order, error)
	Delete(ctx context.Context, orderCode string) error
	DeleteAll(ctx context.Context) (int64, error)
	// DeletePendingBefore removes pending orders created before cutoff and
	// returns their codes. Paid orders are never touched.
	DeletePendingBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	PaidTicketsByPhone(ctx context.Context) (map[string]int64, error)
}
