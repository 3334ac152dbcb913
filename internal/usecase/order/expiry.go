package order

import (
	"context"
	"time"

	"github.com/LavaJover/festival-order-service/internal/domain"
	publisher "github.com/LavaJover/festival-order-service/internal/infrastructure/kafka"
	orderdto "github.com/LavaJover/festival-order-service/internal/usecase/dto/order"
)

func (uc *DefaultOrderUsecase) CleanupExpiredOrders(ctx context.Context) (*orderdto.CleanupOutput, error) {
	return uc.ExpireStalePending(ctx, uc.PendingTimeout)
}

// ExpireStalePending deletes pending orders created more than timeout ago.
// Paid orders are kept regardless of age.
func (uc *DefaultOrderUsecase) ExpireStalePending(ctx context.Context, timeout time.Duration) (*orderdto.CleanupOutput, error) {
	if timeout <= 0 {
		return nil, domain.NewValidationError("timeout", "must be positive")
	}
	now := uc.Now()
	codes, err := uc.OrderRepo.DeletePendingBefore(ctx, now.Add(-timeout))
	if err != nil {
		return nil, err
	}

	uc.Metrics.RecordOrdersExpired(len(codes))
	for _, code := range codes {
		uc.Publisher.PublishOrder(publisher.OrderEvent{
			Type:       publisher.EventOrderExpired,
			OrderCode:  code,
			OccurredAt: now,
		})
	}
	if len(codes) > 0 {
		uc.Logger.Info("expired pending orders removed", "count", len(codes), "timeout", timeout.String())
	}
	if codes == nil {
		codes = []string{}
	}
	return &orderdto.CleanupOutput{Deleted: len(codes), Codes: codes}, nil
}
