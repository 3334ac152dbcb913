package sepay

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LavaJover/festival-order-service/internal/config"
	"github.com/LavaJover/festival-order-service/internal/domain"
)

func testClient(url, key string) *Client {
	return NewClient(config.PaymentGateway{
		APIURL:              url,
		APIKey:              key,
		AccountNumber:       "0123456789",
		Timeout:             2 * time.Second,
		BreakerMaxFailures:  2,
		BreakerResetTimeout: time.Minute,
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRecentSendsAuthAndParsesTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "0123456789", r.URL.Query().Get("account_number"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{
			"status": 200,
			"transactions": [
				{"id": "91", "transaction_content": "CK TSXHL123 thanh toan", "amount_in": "60000.00", "reference_number": "FT1", "transaction_date": "2026-03-01 10:15:00"},
				{"id": 92, "description": "TSXHL456", "amount_in": 20000},
				{"id": "93", "transaction_content": "refund", "amount_in": "20.000"}
			]
		}`)
	}))
	defer srv.Close()

	txs, err := testClient(srv.URL, "secret").Recent(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	require.Equal(t, "91", txs[0].ID)
	require.Equal(t, "CK TSXHL123 thanh toan", txs[0].Content)
	require.EqualValues(t, 60000, txs[0].AmountIn)
	require.Equal(t, "FT1", txs[0].ReferenceNumber)
	require.Equal(t, time.Date(2026, 3, 1, 3, 15, 0, 0, time.UTC), txs[0].Date.UTC())

	require.Equal(t, "92", txs[1].ID)
	require.Equal(t, "TSXHL456", txs[1].Content)
	require.EqualValues(t, 20000, txs[1].AmountIn)

	require.EqualValues(t, 20000, txs[2].AmountIn)
}

func TestRecentWithoutKeyNeverCallsGateway(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, "").Recent(context.Background(), 20)
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	require.ErrorIs(t, err, ErrNotConfigured)
	require.Zero(t, calls.Load())
}

func TestRecentRejectsBadResponses(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusUnauthorized, body: `{"error":"unauthorized"}`},
		{name: "api status", status: http.StatusOK, body: `{"status":401,"error":"bad token"}`},
		{name: "garbage", status: http.StatusOK, body: `<html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := testClient(srv.URL, "k").Recent(context.Background(), 50)
			require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
		})
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "k")
	for i := 0; i < 3; i++ {
		_, err := c.Recent(context.Background(), 50)
		require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	}
	require.EqualValues(t, 2, calls.Load())
	require.Equal(t, StateOpen, c.breaker.GetState())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	require.Error(t, cb.Execute(func() error { return io.EOF }))
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen)

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Equal(t, StateClosed, cb.GetState())
}

func TestParseAmount(t *testing.T) {
	cases := map[string]int64{
		"20000":      20000,
		"20000.00":   20000,
		"20000.5":    20001,
		"20.000":     20000,
		"20,000":     20000,
		" 60000.00 ": 60000,
		"1.234.567":  1234567,
		"20,000 VND": 20000,
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseAmount("")
	require.Error(t, err)
}
