package sepay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LavaJover/festival-order-service/internal/config"
	"github.com/LavaJover/festival-order-service/internal/domain"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/metrics"
)

// SePay reports wall-clock times in Vietnam local time without an offset.
var gatewayZone = time.FixedZone("ICT", 7*60*60)

const gatewayTimeLayout = "2006-01-02 15:04:05"

var ErrNotConfigured = errors.New("sepay api key is not configured")

type Client struct {
	cfg     config.PaymentGateway
	http    *http.Client
	breaker *CircuitBreaker
	metrics *metrics.OrderMetrics
	logger  *slog.Logger
}

func NewClient(cfg config.PaymentGateway, m *metrics.OrderMetrics, logger *slog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: NewCircuitBreaker(cfg.BreakerMaxFailures, cfg.BreakerResetTimeout),
		metrics: m,
		logger:  logger,
	}
}

type listResponse struct {
	Status       int              `json:"status"`
	Error        string           `json:"error"`
	Messages     json.RawMessage  `json:"messages"`
	Transactions []rawTransaction `json:"transactions"`
}

type rawTransaction struct {
	ID                 json.RawMessage `json:"id"`
	TransactionContent string          `json:"transaction_content"`
	Description        string          `json:"description"`
	AmountIn           json.RawMessage `json:"amount_in"`
	ReferenceNumber    string          `json:"reference_number"`
	TransactionDate    string          `json:"transaction_date"`
}

// Recent fetches the newest incoming transactions for the configured
// account. Every failure is wrapped in domain.ErrGatewayUnavailable.
func (c *Client) Recent(ctx context.Context, limit int) ([]domain.ExternalTransaction, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrGatewayUnavailable, ErrNotConfigured)
	}

	var body []byte
	start := time.Now()
	err := c.breaker.Execute(func() error {
		var err error
		body, err = c.fetch(ctx, limit)
		return err
	})
	result := "ok"
	switch {
	case errors.Is(err, ErrCircuitOpen):
		result = "circuit_open"
	case err != nil:
		result = "error"
	}
	c.metrics.RecordGatewayRequest(result, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGatewayUnavailable, err)
	}

	txs, err := decodeTransactions(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGatewayUnavailable, err)
	}
	return txs, nil
}

func (c *Client) fetch(ctx context.Context, limit int) ([]byte, error) {
	q := url.Values{}
	q.Set("account_number", c.cfg.AccountNumber)
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBodyBytes, err := io.ReadAll(io.LimitReader(response.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.Warn("sepay request rejected", "status", response.StatusCode, "body", truncate(responseBodyBytes, 256))
		return nil, fmt.Errorf("sepay responded with http %d", response.StatusCode)
	}
	return responseBodyBytes, nil
}

func decodeTransactions(body []byte) ([]domain.ExternalTransaction, error) {
	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode sepay response: %w", err)
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("sepay status %d: %s", resp.Status, resp.Error)
	}

	out := make([]domain.ExternalTransaction, 0, len(resp.Transactions))
	for _, raw := range resp.Transactions {
		content := raw.TransactionContent
		if content == "" {
			content = raw.Description
		}
		amount, err := ParseAmount(unquote(raw.AmountIn))
		if err != nil {
			// outgoing transfers carry no amount_in; they can never pay an order
			amount = 0
		}
		date, _ := time.ParseInLocation(gatewayTimeLayout, raw.TransactionDate, gatewayZone)
		out = append(out, domain.ExternalTransaction{
			ID:              unquote(raw.ID),
			Content:         content,
			AmountIn:        amount,
			ReferenceNumber: raw.ReferenceNumber,
			Date:            date,
		})
	}
	return out, nil
}

var plainDecimal = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ParseAmount turns a gateway amount into whole dong. "20000.00" is read as a
// decimal; anything else ("20.000", "20,000 VND") keeps only its digits.
func ParseAmount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if plainDecimal.MatchString(s) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, err
		}
		return d.Round(0).IntPart(), nil
	}

	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("no digits in amount %q", raw)
	}
	return strconv.ParseInt(digits.String(), 10, 64)
}

func unquote(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
