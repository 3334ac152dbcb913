package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaevor/go-nanoid"

	"github.com/LavaJover/festival-order-service/internal/config"
	"github.com/LavaJover/festival-order-service/internal/domain"
	publisher "github.com/LavaJover/festival-order-service/internal/infrastructure/kafka"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/metrics"
	orderdto "github.com/LavaJover/festival-order-service/internal/usecase/dto/order"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type OrderUsecase interface {
	CreateOrUpdateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, input *orderdto.UpdateOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderCode string) error
	DeleteAllOrders(ctx context.Context) (int64, error)
	CleanupExpiredOrders(ctx context.Context) (*orderdto.CleanupOutput, error)
	ExpireStalePending(ctx context.Context, timeout time.Duration) (*orderdto.CleanupOutput, error)
}

// Pricing holds the rules that turn a quantity into money and tickets.
type Pricing struct {
	CodePrefix           string
	UnitPrice            int64
	MinQuantityForTicket int64
	TicketsPerPromo      int64
	BuyXGet1Free         int64
}

func PricingFromConfig(cfg *config.OrderConfig) Pricing {
	return Pricing{
		CodePrefix:           cfg.Product.CodePrefix,
		UnitPrice:            cfg.Product.UnitPrice,
		MinQuantityForTicket: cfg.Promo.MinQuantityForTicket,
		TicketsPerPromo:      cfg.Promo.TicketsPerPromo,
		BuyXGet1Free:         cfg.Promo.BuyXGet1Free,
	}
}

func (p Pricing) Total(quantity int64) int64 {
	return quantity * p.UnitPrice
}

// Tickets grants TicketsPerPromo for every full block of MinQuantityForTicket.
func (p Pricing) Tickets(quantity int64) int64 {
	if p.MinQuantityForTicket <= 0 || quantity < p.MinQuantityForTicket {
		return 0
	}
	return quantity / p.MinQuantityForTicket * p.TicketsPerPromo
}

func (p Pricing) FreePortions(quantity int64) int64 {
	if p.BuyXGet1Free <= 0 {
		return 0
	}
	return quantity / p.BuyXGet1Free
}

type DefaultOrderUsecase struct {
	OrderRepo      domain.OrderRepository
	Pricing        Pricing
	PendingTimeout time.Duration
	Publisher      *publisher.EventPublisher
	Metrics        *metrics.OrderMetrics
	Logger         *slog.Logger
	Now            func() time.Time

	newCode func() string
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	pricing Pricing,
	pendingTimeout time.Duration,
	eventPublisher *publisher.EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	logger *slog.Logger,
) (*DefaultOrderUsecase, error) {
	gen, err := nanoid.CustomASCII(codeAlphabet, 10)
	if err != nil {
		return nil, fmt.Errorf("order code generator: %w", err)
	}
	return &DefaultOrderUsecase{
		OrderRepo:      orderRepo,
		Pricing:        pricing,
		PendingTimeout: pendingTimeout,
		Publisher:      eventPublisher,
		Metrics:        orderMetrics,
		Logger:         logger,
		Now:            func() time.Time { return time.Now().UTC() },
		newCode:        gen,
	}, nil
}

func (uc *DefaultOrderUsecase) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return uc.OrderRepo.ListAll(ctx)
}

var _ OrderUsecase = (*DefaultOrderUsecase)(nil)
