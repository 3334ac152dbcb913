package dto

import (
	"time"

	"github.com/LavaJover/festival-order-service/internal/domain"
)

type OrderResponse struct {
	OrderCode    string    `json:"orderCode"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Class        string    `json:"class"`
	Quantity     int64     `json:"quantity"`
	Note         string    `json:"note"`
	Total        int64     `json:"total"`
	Tickets      int64     `json:"tickets"`
	FreePortions int64     `json:"freePortions"`
	Status       string    `json:"status"`
	Delivered    bool      `json:"delivered"`
	Timestamp    time.Time `json:"timestamp"`
}

func ToOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		OrderCode:    o.OrderCode,
		Name:         o.Name,
		Phone:        o.Phone,
		Class:        o.Class,
		Quantity:     o.Quantity,
		Note:         o.Note,
		Total:        o.Total,
		Tickets:      o.Tickets,
		FreePortions: o.FreePortions,
		Status:       string(o.Status),
		Delivered:    o.Delivered,
		Timestamp:    o.CreatedAt,
	}
}

func ToOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Field  string `json:"field,omitempty"`
}
