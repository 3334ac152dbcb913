package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/festival-order-service/internal/usecase/order"
	"github.com/LavaJover/festival-order-service/internal/usecase/payment"
)

type BackgroundTasks struct {
	OrderUsecase      order.OrderUsecase
	PaymentUsecase    payment.PaymentUsecase
	AutoCheckInterval time.Duration
	ExpiryInterval    time.Duration
	Logger            *slog.Logger
}

func NewBackgroundTasks(
	orderUC order.OrderUsecase,
	paymentUC payment.PaymentUsecase,
	autoCheckInterval, expiryInterval time.Duration,
	logger *slog.Logger,
) *BackgroundTasks {
	return &BackgroundTasks{
		OrderUsecase:      orderUC,
		PaymentUsecase:    paymentUC,
		AutoCheckInterval: autoCheckInterval,
		ExpiryInterval:    expiryInterval,
		Logger:            logger,
	}
}

// Run blocks until ctx is cancelled. A zero interval disables that loop.
func (bt *BackgroundTasks) Run(ctx context.Context) error {
	done := make(chan struct{}, 2)
	go func() { bt.startPaymentAutoCheck(ctx); done <- struct{}{} }()
	go func() { bt.startOrderExpiry(ctx); done <- struct{}{} }()
	<-done
	<-done
	return nil
}

func (bt *BackgroundTasks) startPaymentAutoCheck(ctx context.Context) {
	every(ctx, bt.AutoCheckInterval, func() {
		out, err := bt.PaymentUsecase.AutoCheckPendingPayments(ctx)
		if err != nil {
			bt.Logger.Error("auto-check failed", "error", err)
			return
		}
		if len(out.UpdatedCodes) > 0 {
			bt.Logger.Info("auto-check confirmed payments", "checked", out.Checked, "updated", out.UpdatedCodes)
		}
	})
}

func (bt *BackgroundTasks) startOrderExpiry(ctx context.Context) {
	every(ctx, bt.ExpiryInterval, func() {
		out, err := bt.OrderUsecase.CleanupExpiredOrders(ctx)
		if err != nil {
			bt.Logger.Error("expiry cleanup failed", "error", err)
			return
		}
		if out.Deleted > 0 {
			bt.Logger.Info("expired pending orders removed", "count", out.Deleted)
		}
	})
}

func every(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
