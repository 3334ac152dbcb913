package setup

import (
	"fmt"

	"github.com/LavaJover/festival-order-service/internal/game"
	"github.com/LavaJover/festival-order-service/internal/usecase/minigame"
	"github.com/LavaJover/festival-order-service/internal/usecase/order"
	"github.com/LavaJover/festival-order-service/internal/usecase/payment"
)

type UseCases struct {
	OrderUsecase   order.OrderUsecase
	PaymentUsecase payment.PaymentUsecase
	GameUsecase    minigame.GameUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	cfg := deps.Config

	orderUsecase, err := order.NewDefaultOrderUsecase(
		deps.Repositories.OrderRepo,
		order.PricingFromConfig(cfg),
		cfg.Scheduler.PendingTimeout,
		deps.Publisher,
		deps.Metrics,
		deps.Logger.With("component", "orders"),
	)
	if err != nil {
		return nil, fmt.Errorf("order usecase: %w", err)
	}

	paymentUsecase := payment.NewDefaultPaymentUsecase(
		deps.Repositories.OrderRepo,
		deps.Feed,
		deps.Lease,
		cfg.PaymentGateway.SingleCheckLimit,
		cfg.PaymentGateway.BatchCheckLimit,
		deps.Publisher,
		deps.Metrics,
		deps.Logger.With("component", "payments"),
	)

	prizes := cfg.Game.WheelPrizes
	if len(prizes) == 0 {
		prizes = game.DefaultPrizes
	}
	wheel, err := game.NewWheel(prizes)
	if err != nil {
		return nil, fmt.Errorf("wheel: %w", err)
	}

	gameUsecase := minigame.NewDefaultGameUsecase(
		deps.Repositories.OrderRepo,
		deps.Repositories.Ledger,
		wheel,
		game.DefaultSource(),
		deps.Publisher,
		deps.Metrics,
		deps.Logger.With("component", "minigame"),
	)

	return &UseCases{
		OrderUsecase:   orderUsecase,
		PaymentUsecase: paymentUsecase,
		GameUsecase:    gameUsecase,
	}, nil
}
