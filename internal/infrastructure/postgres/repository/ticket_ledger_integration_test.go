//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LavaJover/festival-order-service/internal/config"
	"github.com/LavaJover/festival-order-service/internal/domain"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres"
)

// Run with: POSTGRES_TEST_DSN=postgres://... go test -tags integration ./...
func newPostgresLedger(t *testing.T) *DefaultTicketLedger {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := postgres.InitDB(config.OrderDB{Dsn: dsn, MaxOpenConns: 16})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewDefaultTicketLedger(db)
}

func TestPostgresConcurrentSpendNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	ledger := newPostgresLedger(t)
	phone := fmt.Sprintf("9%09d", time.Now().UnixNano()%1_000_000_000)
	t.Cleanup(func() { _ = ledger.Delete(context.Background(), phone) })

	_, err := ledger.Grant(ctx, phone, 3)
	require.NoError(t, err)

	const players = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	start := make(chan struct{})
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := ledger.Spend(ctx, phone, func(*domain.GameState) error { return nil })
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrInsufficientTickets) && !errors.Is(err, domain.ErrTicketConflict) {
				t.Errorf("unexpected spend error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, 3, success)
	b, err := ledger.Balance(ctx, phone)
	require.NoError(t, err)
	require.EqualValues(t, 3, b.UsedTickets)
	require.Zero(t, b.Available())
}
