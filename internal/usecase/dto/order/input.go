package orderdto

// CreateOrderInput is what the order form submits. Pricing fields are
// derived on the server, and a new order always starts pending.
type CreateOrderInput struct {
	OrderCode string
	Name      string
	Phone     string
	Class     string
	Quantity  int64
	Note      string
}

type UpdateOrderInput struct {
	OrderCode string
	Status    *string
	Delivered *bool
}
