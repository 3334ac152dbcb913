package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OrderMetrics holds every collector the service exports. All Record*
// methods are safe on a nil receiver so components can run without metrics.
type OrderMetrics struct {
	// Orders
	OrdersCreatedTotal prometheus.Counter
	OrdersPaidTotal    *prometheus.CounterVec
	OrdersPaidAmount   prometheus.Counter
	OrdersExpiredTotal prometheus.Counter
	OrdersDeletedTotal prometheus.Counter

	// Reconciliation
	ReconcilePassesTotal   *prometheus.CounterVec
	ReconcilePassDuration  *prometheus.HistogramVec
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration prometheus.Histogram

	// Tickets and games
	GamePlaysTotal      *prometheus.CounterVec
	GameRejectionsTotal *prometheus.CounterVec
	BonusTicketsTotal   prometheus.Counter
	CardsCompletedTotal prometheus.Counter

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	f := promauto.With(reg)
	return &OrderMetrics{
		OrdersCreatedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders inserted into the ledger",
		}),
		OrdersPaidTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_paid_total",
			Help: "Orders transitioned from pending to paid",
		}, []string{"source"}),
		OrdersPaidAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "orders_paid_amount_total",
			Help: "Sum of totals of orders marked paid",
		}),
		OrdersExpiredTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "orders_expired_total",
			Help: "Pending orders removed after the payment timeout",
		}),
		OrdersDeletedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "orders_deleted_total",
			Help: "Orders removed by admin action",
		}),

		ReconcilePassesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_reconcile_passes_total",
			Help: "Reconciliation passes by mode and outcome",
		}, []string{"mode", "outcome"}),
		ReconcilePassDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payment_reconcile_pass_duration_seconds",
			Help:    "Duration of reconciliation passes",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms, 20ms, 40ms...
		}, []string{"mode"}),
		GatewayRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_gateway_requests_total",
			Help: "Transaction feed requests by result",
		}, []string{"result"}),
		GatewayRequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "payment_gateway_request_duration_seconds",
			Help:    "Transaction feed request latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),

		GamePlaysTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "game_plays_total",
			Help: "Successful mini-game plays",
		}, []string{"game", "outcome"}),
		GameRejectionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "game_rejections_total",
			Help: "Plays rejected before any ticket was consumed",
		}, []string{"game", "reason"}),
		BonusTicketsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "bonus_tickets_granted_total",
			Help: "Tickets granted by admins",
		}),
		CardsCompletedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "card_collections_completed_total",
			Help: "Players who collected every card",
		}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *OrderMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.OrdersCreatedTotal.Inc()
}

// RecordOrderPaid: source is "reconcile" or "admin".
func (m *OrderMetrics) RecordOrderPaid(source string, total int64) {
	if m == nil {
		return
	}
	m.OrdersPaidTotal.WithLabelValues(source).Inc()
	m.OrdersPaidAmount.Add(float64(total))
}

func (m *OrderMetrics) RecordOrdersExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.OrdersExpiredTotal.Add(float64(n))
}

func (m *OrderMetrics) RecordOrdersDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.OrdersDeletedTotal.Add(float64(n))
}

func (m *OrderMetrics) RecordReconcilePass(mode, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ReconcilePassesTotal.WithLabelValues(mode, outcome).Inc()
	m.ReconcilePassDuration.WithLabelValues(mode).Observe(durationSeconds)
}

func (m *OrderMetrics) RecordGatewayRequest(result string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.GatewayRequestsTotal.WithLabelValues(result).Inc()
	m.GatewayRequestDuration.Observe(durationSeconds)
}

func (m *OrderMetrics) RecordGamePlay(game, outcome string) {
	if m == nil {
		return
	}
	m.GamePlaysTotal.WithLabelValues(game, outcome).Inc()
}

func (m *OrderMetrics) RecordGameRejection(game, reason string) {
	if m == nil {
		return
	}
	m.GameRejectionsTotal.WithLabelValues(game, reason).Inc()
}

func (m *OrderMetrics) RecordBonusTickets(n int64) {
	if m == nil {
		return
	}
	m.BonusTicketsTotal.Add(float64(n))
}

func (m *OrderMetrics) RecordCollectionCompleted() {
	if m == nil {
		return
	}
	m.CardsCompletedTotal.Inc()
}

func (m *OrderMetrics) RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
