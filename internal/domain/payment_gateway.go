package domain

import (
	"context"
	"time"
)

type ExternalTransaction struct {
	ID              string
	Content         string
	AmountIn        int64
	ReferenceNumber string
	Date            time.Time
}

type TransactionFeed interface {
	// Recent returns up to limit of the newest transactions for the
	// configured account.
	Recent(ctx context.Context, limit int) ([]ExternalTransaction, error)
}

// PassLease serializes batch reconciliation passes across replicas.
type PassLease interface {
	TryAcquire(ctx context.Context, name string) (release func(), ok bool, err error)
}
