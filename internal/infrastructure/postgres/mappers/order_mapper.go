package mappers

import (
	"gorm.io/datatypes"

	"github.com/LavaJover/festival-order-service/internal/domain"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		OrderCode:    model.OrderCode,
		Name:         model.Name,
		Phone:        model.Phone,
		Class:        model.ClassName,
		Quantity:     model.Quantity,
		Note:         model.Note,
		Total:        model.Total,
		Tickets:      model.Tickets,
		FreePortions: model.FreePortions,
		Status:       model.Status,
		Delivered:    model.Delivered,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		OrderCode:    order.OrderCode,
		Name:         order.Name,
		Phone:        order.Phone,
		ClassName:    order.Class,
		Quantity:     order.Quantity,
		Note:         order.Note,
		Total:        order.Total,
		Tickets:      order.Tickets,
		FreePortions: order.FreePortions,
		Status:       order.Status,
		Delivered:    order.Delivered,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

func ToDomainGameState(model *models.GameStateModel) *domain.GameState {
	cards := make([]int, len(model.CollectedCards))
	copy(cards, model.CollectedCards)
	return &domain.GameState{
		Phone:          model.Phone,
		CollectedCards: cards,
		UsedTickets:    model.UsedTickets,
		BonusTickets:   model.BonusTickets,
		UpdatedAt:      model.UpdatedAt,
	}
}

// ToCardSlice never returns nil so the column is written as [] rather than null.
func ToCardSlice(cards []int) datatypes.JSONSlice[int] {
	if cards == nil {
		return datatypes.JSONSlice[int]{}
	}
	return datatypes.JSONSlice[int](cards)
}
