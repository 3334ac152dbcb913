package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/LavaJover/festival-order-service/internal/delivery/http/handlers"
	"github.com/LavaJover/festival-order-service/internal/delivery/http/middleware"
	"github.com/LavaJover/festival-order-service/internal/domain"
	"github.com/LavaJover/festival-order-service/internal/game"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/memory"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/metrics"
	leases "github.com/LavaJover/festival-order-service/internal/infrastructure/redis"
	"github.com/LavaJover/festival-order-service/internal/usecase/minigame"
	"github.com/LavaJover/festival-order-service/internal/usecase/order"
	"github.com/LavaJover/festival-order-service/internal/usecase/payment"
)

const adminPassword = "letmein"

type stubFeed struct {
	txs []domain.ExternalTransaction
	err error
}

func (s *stubFeed) Recent(context.Context, int) ([]domain.ExternalTransaction, error) {
	return s.txs, s.err
}

type server struct {
	router *gin.Engine
	feed   *stubFeed
	store  *memory.Store
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.NewOrderMetrics(reg)
	store := memory.NewStore()
	feed := &stubFeed{}

	orders, err := order.NewDefaultOrderUsecase(store.Orders(), order.Pricing{
		CodePrefix:           "TSXHL",
		UnitPrice:            20000,
		MinQuantityForTicket: 3,
		TicketsPerPromo:      1,
		BuyXGet1Free:         10,
	}, 0, nil, m, logger)
	require.NoError(t, err)

	payments := payment.NewDefaultPaymentUsecase(store.Orders(), feed, leases.NewLocalPassLease(), 20, 50, nil, m, logger)

	wheel, err := game.NewWheel(game.DefaultPrizes)
	require.NoError(t, err)
	games := minigame.NewDefaultGameUsecase(store.Orders(), store.Tickets(), wheel, game.DefaultSource(), nil, m, logger)

	return &server{
		router: NewRouter(RouterDeps{
			Orders:        handlers.NewOrderHandler(orders),
			Payments:      handlers.NewPaymentHandler(payments),
			Games:         handlers.NewGameHandler(games),
			AdminPassword: adminPassword,
			Metrics:       m,
			Gatherer:      reg,
		}),
		feed:  feed,
		store: store,
	}
}

func (s *server) do(t *testing.T, method, target, body string, admin bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set(middleware.AdminHeader, adminPassword)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

const orderBody = `{"orderCode":"TSXHL001","name":"An","phone":"0901234567","class":"10.11","quantity":3,"total":1,"tickets":99}`

func TestOrderLifecycle(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, http.MethodPost, "/api/orders", orderBody, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 60000, body["total"])
	require.EqualValues(t, 1, body["tickets"])
	require.Equal(t, "pending", body["status"])

	w, _ = s.do(t, http.MethodGet, "/api/orders", "", false)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/orders", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w, body = s.do(t, http.MethodPatch, "/api/orders/TSXHL001", `{"delivered":true}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["delivered"])

	w, body = s.do(t, http.MethodPatch, "/api/orders/TSXHL001", `{"status":"refunded"}`, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "status", body["field"])

	w, _ = s.do(t, http.MethodDelete, "/api/orders/TSXHL001", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/orders/TSXHL001", "", true)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, http.MethodPost, "/api/orders", `{"orderCode":"TSXHL001","name":"An","class":"10.11","quantity":1}`, false)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "phone", body["field"])

	w, _ = s.do(t, http.MethodPost, "/api/orders", `{not json`, false)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckPaymentAndAutoCheck(t *testing.T) {
	s := newServer(t)
	w, _ := s.do(t, http.MethodPost, "/api/orders", orderBody, false)
	require.Equal(t, http.StatusOK, w.Code)

	s.feed.err = domain.ErrGatewayUnavailable
	w, body := s.do(t, http.MethodGet, "/api/check-payment?code=TSXHL001", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, body["paid"])

	w, _ = s.do(t, http.MethodGet, "/api/admin/transactions", "", true)
	require.Equal(t, http.StatusBadGateway, w.Code)

	s.feed.err = nil
	s.feed.txs = []domain.ExternalTransaction{{Content: "CK TSXHL001", AmountIn: 60000}}
	w, body = s.do(t, http.MethodPost, "/api/orders/auto-check", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, body["checked"])
	require.Equal(t, []any{"TSXHL001"}, body["updated"])

	w, body = s.do(t, http.MethodGet, "/api/check-payment?code=TSXHL001", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["paid"])

	w, _ = s.do(t, http.MethodGet, "/api/check-payment?code=MISSING", "", false)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMinigameFlow(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, http.MethodGet, "/api/minigame?phone=0901234567", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, body["hasState"])

	w, body = s.do(t, http.MethodPost, "/api/minigame/wheel", `{"phone":"0901234567"}`, false)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "no_tickets", body["reason"])

	w, _ = s.do(t, http.MethodPost, "/api/admin/add-tickets", `{"phone":"0901234567"}`, false)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/admin/add-tickets", `{"phone":"0901234567"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, body["bonusTickets"])

	w, body = s.do(t, http.MethodPost, "/api/admin/add-tickets", `{"phone":"0901234567","tickets":2}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 3, body["availableTickets"])

	w, body = s.do(t, http.MethodPost, "/api/minigame/wheel", `{"phone":"0901234567"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 2, body["availableTickets"])

	w, body = s.do(t, http.MethodPost, "/api/minigame/flip", `{"phone":"0901234567"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["isNew"])

	w, body = s.do(t, http.MethodGet, "/api/admin/minigame-stats", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body["stats"], 1)

	w, _ = s.do(t, http.MethodDelete, "/api/admin/minigame/0901234567", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/admin/minigame/0901234567", "", true)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpsEndpoints(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, http.MethodGet, "/healthz", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["ok"])

	w, _ = s.do(t, http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "http_requests_total")
}

func TestLowercaseOrderCodeRoundTrip(t *testing.T) {
	s := newServer(t)

	w, body := s.do(t, http.MethodPost, "/api/orders",
		`{"orderCode":"tsxhl777","name":"An","phone":"0901234567","class":"10.11","quantity":1}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "TSXHL777", body["orderCode"])

	w, body = s.do(t, http.MethodGet, "/api/check-payment?code=tsxhl777", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, body["paid"])

	w, body = s.do(t, http.MethodPatch, "/api/orders/tsxhl777", `{"delivered":true}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["delivered"])

	w, _ = s.do(t, http.MethodDelete, "/api/orders/tsxhl777", "", true)
	require.Equal(t, http.StatusOK, w.Code)
}
