package order

import (
	"context"
	"strings"

	"github.com/LavaJover/festival-order-service/internal/domain"
	publisher "github.com/LavaJover/festival-order-service/internal/infrastructure/kafka"
	orderdto "github.com/LavaJover/festival-order-service/internal/usecase/dto/order"
)

// UpdateOrder applies an admin edit. Status may only move forward to paid;
// asking for pending on a paid order is rejected.
func (uc *DefaultOrderUsecase) UpdateOrder(ctx context.Context, input *orderdto.UpdateOrderInput) (*domain.Order, error) {
	code := domain.NormalizeOrderCode(input.OrderCode)
	order, err := uc.OrderRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(*input.Status)))
		switch {
		case !status.Valid():
			return nil, domain.NewValidationError("status", "must be pending or paid")
		case status == domain.StatusPending && order.IsPaid():
			return nil, domain.ErrInvalidStatusTransition
		case status == domain.StatusPaid:
			updated, err := uc.OrderRepo.MarkPaid(ctx, code)
			if err != nil {
				return nil, err
			}
			if updated {
				uc.onPaid(order, "admin")
			}
		}
	}

	if input.Delivered != nil {
		return uc.OrderRepo.SetDelivered(ctx, code, *input.Delivered)
	}
	return uc.OrderRepo.GetByCode(ctx, code)
}

func (uc *DefaultOrderUsecase) onPaid(order *domain.Order, source string) {
	uc.Metrics.RecordOrderPaid(source, order.Total)
	uc.Logger.Info("order marked paid", "order_code", order.OrderCode, "source", source)
	uc.Publisher.PublishOrder(publisher.OrderEvent{
		Type:       publisher.EventOrderPaid,
		OrderCode:  order.OrderCode,
		Phone:      order.Phone,
		Total:      order.Total,
		Tickets:    order.Tickets,
		Source:     source,
		OccurredAt: uc.Now(),
	})
}

func (uc *DefaultOrderUsecase) DeleteOrder(ctx context.Context, orderCode string) error {
	code := domain.NormalizeOrderCode(orderCode)
	if err := uc.OrderRepo.Delete(ctx, code); err != nil {
		return err
	}
	uc.Metrics.RecordOrdersDeleted(1)
	uc.Logger.Info("order deleted", "order_code", code)
	return nil
}

func (uc *DefaultOrderUsecase) DeleteAllOrders(ctx context.Context) (int64, error) {
	n, err := uc.OrderRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	uc.Metrics.RecordOrdersDeleted(n)
	uc.Logger.Warn("all orders deleted", "count", n)
	return n, nil
}
