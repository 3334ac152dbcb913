package order

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/LavaJover/festival-order-service/internal/domain"
	orderdto "github.com/LavaJover/festival-order-service/internal/usecase/dto/order"
)

const maxQuantity = 1000

var orderCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{4,64}$`)

// CreateOrUpdateOrder stores a new pending order, or returns the stored row
// unchanged when the code already exists. Client-side totals are never
// trusted; pricing is recomputed here.
func (uc *DefaultOrderUsecase) CreateOrUpdateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*domain.Order, error) {
	in := normalize(input)
	if err := validate(in); err != nil {
		return nil, err
	}

	if in.OrderCode == "" {
		in.OrderCode = uc.Pricing.CodePrefix + uc.newCode()
	} else {
		existing, err := uc.OrderRepo.GetByCode(ctx, in.OrderCode)
		switch {
		case err == nil:
			return uc.OrderRepo.Upsert(ctx, existing)
		case !errors.Is(err, domain.ErrOrderNotFound):
			return nil, err
		}
	}

	now := uc.Now()
	order := &domain.Order{
		OrderCode:    in.OrderCode,
		Name:         in.Name,
		Phone:        in.Phone,
		Class:        in.Class,
		Quantity:     in.Quantity,
		Note:         in.Note,
		Total:        uc.Pricing.Total(in.Quantity),
		Tickets:      uc.Pricing.Tickets(in.Quantity),
		FreePortions: uc.Pricing.FreePortions(in.Quantity),
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	saved, err := uc.OrderRepo.Upsert(ctx, order)
	if err != nil {
		return nil, err
	}

	uc.Metrics.RecordOrderCreated()
	uc.Logger.Info("order created",
		"order_code", saved.OrderCode,
		"quantity", saved.Quantity,
		"total", saved.Total,
		"tickets", saved.Tickets,
	)
	return saved, nil
}

func normalize(in *orderdto.CreateOrderInput) orderdto.CreateOrderInput {
	if in == nil {
		return orderdto.CreateOrderInput{}
	}
	return orderdto.CreateOrderInput{
		OrderCode: domain.NormalizeOrderCode(in.OrderCode),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Class:     strings.TrimSpace(in.Class),
		Quantity:  in.Quantity,
		Note:      strings.TrimSpace(in.Note),
	}
}

func validate(in orderdto.CreateOrderInput) error {
	if in.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if _, err := domain.NormalizePhone(in.Phone); err != nil {
		return err
	}
	switch {
	case in.Class == "":
		return domain.NewValidationError("class", "is required")
	case in.Quantity < 1 || in.Quantity > maxQuantity:
		return domain.NewValidationError("quantity", "must be between 1 and 1000")
	case in.OrderCode != "" && !orderCodePattern.MatchString(in.OrderCode):
		return domain.NewValidationError("orderCode", "must be 4-64 letters or digits")
	}
	return nil
}
