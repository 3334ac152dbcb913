package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/festival-order-service/internal/domain"
	publisher "github.com/LavaJover/festival-order-service/internal/infrastructure/kafka"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/metrics"
	paymentdto "github.com/LavaJover/festival-order-service/internal/usecase/dto/payment"
)

const autoCheckLease = "payment-auto-check"

type PaymentUsecase interface {
	CheckPayment(ctx context.Context, orderCode string) (*paymentdto.CheckPaymentOutput, error)
	AutoCheckPendingPayments(ctx context.Context) (*paymentdto.AutoCheckOutput, error)
	RecentTransactions(ctx context.Context) ([]paymentdto.TransactionOutput, error)
}

// DefaultPaymentUsecase reconciles pending orders against the gateway feed.
// A feed failure never changes an order; the next poll simply retries.
type DefaultPaymentUsecase struct {
	OrderRepo        domain.OrderRepository
	Feed             domain.TransactionFeed
	Lease            domain.PassLease
	SingleCheckLimit int
	BatchCheckLimit  int
	Publisher        *publisher.EventPublisher
	Metrics          *metrics.OrderMetrics
	Logger           *slog.Logger
	Now              func() time.Time
}

func NewDefaultPaymentUsecase(
	orderRepo domain.OrderRepository,
	feed domain.TransactionFeed,
	lease domain.PassLease,
	singleCheckLimit, batchCheckLimit int,
	eventPublisher *publisher.EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	logger *slog.Logger,
) *DefaultPaymentUsecase {
	return &DefaultPaymentUsecase{
		OrderRepo:        orderRepo,
		Feed:             feed,
		Lease:            lease,
		SingleCheckLimit: singleCheckLimit,
		BatchCheckLimit:  batchCheckLimit,
		Publisher:        eventPublisher,
		Metrics:          orderMetrics,
		Logger:           logger,
		Now:              func() time.Time { return time.Now().UTC() },
	}
}

// Matches reports whether tx pays order: the memo contains the order code
// (case-insensitive) and the inbound amount equals the total exactly.
func Matches(order *domain.Order, tx domain.ExternalTransaction) bool {
	if order.OrderCode == "" || tx.AmountIn != order.Total {
		return false
	}
	return strings.Contains(strings.ToUpper(tx.Content), strings.ToUpper(order.OrderCode))
}

// FindMatch returns the first transaction in feed order that pays order.
func FindMatch(order *domain.Order, txs []domain.ExternalTransaction) (domain.ExternalTransaction, bool) {
	for _, tx := range txs {
		if Matches(order, tx) {
			return tx, true
		}
	}
	return domain.ExternalTransaction{}, false
}

func (uc *DefaultPaymentUsecase) CheckPayment(ctx context.Context, orderCode string) (*paymentdto.CheckPaymentOutput, error) {
	code := domain.NormalizeOrderCode(orderCode)
	if code == "" {
		return nil, domain.NewValidationError("code", "is required")
	}
	out := &paymentdto.CheckPaymentOutput{OrderCode: code}

	order, err := uc.OrderRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		out.Paid = true
		return out, nil
	}

	start := time.Now()
	txs, err := uc.Feed.Recent(ctx, uc.SingleCheckLimit)
	if err != nil {
		uc.Metrics.RecordReconcilePass("single", "gateway_error", time.Since(start).Seconds())
		uc.Logger.Warn("payment check skipped, gateway unavailable", "order_code", code, "error", err)
		return out, nil
	}

	tx, ok := FindMatch(order, txs)
	if !ok {
		uc.Metrics.RecordReconcilePass("single", "no_match", time.Since(start).Seconds())
		return out, nil
	}

	updated, err := uc.OrderRepo.MarkPaid(ctx, code)
	if err != nil {
		return nil, err
	}
	if updated {
		uc.onPaid(order, tx)
		out.Paid = true
	} else {
		// lost a race with another pass; report what is stored now
		current, err := uc.OrderRepo.GetByCode(ctx, code)
		if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		out.Paid = current != nil && current.IsPaid()
	}
	uc.Metrics.RecordReconcilePass("single", "matched", time.Since(start).Seconds())
	return out, nil
}

// AutoCheckPendingPayments checks every pending order against one feed
// fetch. UpdatedCodes lists only orders this pass moved to paid, so running
// it again over the same feed reports nothing new.
func (uc *DefaultPaymentUsecase) AutoCheckPendingPayments(ctx context.Context) (*paymentdto.AutoCheckOutput, error) {
	out := &paymentdto.AutoCheckOutput{UpdatedCodes: []string{}}

	release, acquired, err := uc.Lease.TryAcquire(ctx, autoCheckLease)
	switch {
	case err != nil:
		// the transition is idempotent, so running without the lease is safe
		uc.Logger.Warn("auto-check lease unavailable, continuing without it", "error", err)
	case !acquired:
		out.Skipped = true
		return out, nil
	default:
		defer release()
	}

	start := time.Now()
	pending, err := uc.OrderRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out.Checked = len(pending)
	if len(pending) == 0 {
		uc.Metrics.RecordReconcilePass("batch", "idle", time.Since(start).Seconds())
		return out, nil
	}

	txs, err := uc.Feed.Recent(ctx, uc.BatchCheckLimit)
	if err != nil {
		uc.Metrics.RecordReconcilePass("batch", "gateway_error", time.Since(start).Seconds())
		uc.Logger.Warn("auto-check skipped, gateway unavailable", "pending", len(pending), "error", err)
		return out, nil
	}

	for _, order := range pending {
		tx, ok := FindMatch(order, txs)
		if !ok {
			continue
		}
		updated, err := uc.OrderRepo.MarkPaid(ctx, order.OrderCode)
		if err != nil {
			return nil, err
		}
		if updated {
			uc.onPaid(order, tx)
			out.UpdatedCodes = append(out.UpdatedCodes, order.OrderCode)
		}
	}

	outcome := "no_match"
	if len(out.UpdatedCodes) > 0 {
		outcome = "matched"
	}
	uc.Metrics.RecordReconcilePass("batch", outcome, time.Since(start).Seconds())
	if len(out.UpdatedCodes) > 0 {
		uc.Logger.Info("auto-check marked orders paid", "checked", out.Checked, "updated", out.UpdatedCodes)
	}
	return out, nil
}

// RecentTransactions exposes the batch feed window to admins. Unlike the
// checks above, a gateway failure is returned to the caller.
func (uc *DefaultPaymentUsecase) RecentTransactions(ctx context.Context) ([]paymentdto.TransactionOutput, error) {
	txs, err := uc.Feed.Recent(ctx, uc.BatchCheckLimit)
	if err != nil {
		return nil, err
	}
	out := make([]paymentdto.TransactionOutput, 0, len(txs))
	for _, tx := range txs {
		out = append(out, paymentdto.TransactionOutput{
			ID:              tx.ID,
			Content:         tx.Content,
			AmountIn:        tx.AmountIn,
			ReferenceNumber: tx.ReferenceNumber,
			Date:            tx.Date,
		})
	}
	return out, nil
}

func (uc *DefaultPaymentUsecase) onPaid(order *domain.Order, tx domain.ExternalTransaction) {
	uc.Metrics.RecordOrderPaid("reconcile", order.Total)
	uc.Logger.Info("order marked paid",
		"order_code", order.OrderCode,
		"source", "reconcile",
		"reference_number", tx.ReferenceNumber,
	)
	uc.Publisher.PublishOrder(publisher.OrderEvent{
		Type:       publisher.EventOrderPaid,
		OrderCode:  order.OrderCode,
		Phone:      order.Phone,
		Total:      order.Total,
		Tickets:    order.Tickets,
		Source:     "reconcile",
		OccurredAt: uc.Now(),
	})
}

var _ PaymentUsecase = (*DefaultPaymentUsecase)(nil)
