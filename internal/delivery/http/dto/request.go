package dto

// CreateOrderRequest mirrors the order form. total, tickets, freePortions
// and status may be present in the payload but are recomputed server side.
type CreateOrderRequest struct {
	OrderCode string `json:"orderCode"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Class     string `json:"class"`
	Quantity  int64  `json:"quantity"`
	Note      string `json:"note"`
}

type UpdateOrderRequest struct {
	Status    *string `json:"status"`
	Delivered *bool   `json:"delivered"`
}

type PlayRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type AddTicketsRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Tickets *int64 `json:"tickets"`
}
