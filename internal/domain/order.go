package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusPaid    OrderStatus = "paid"
)

func (s OrderStatus) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Order is keyed by OrderCode. Customer fields, pricing and CreatedAt are
// fixed at creation; only Status and Delivered change afterwards.
type Order struct {
	OrderCode    string
	Name         string
	Phone        string
	Class        string
	Quantity     int64
	Note         string
	Total        int64
	Tickets      int64
	FreePortions int64
	Status       OrderStatus
	Delivered    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}


// NormalizeOrderCode is the stored form of an order code. Codes are matched
// case-insensitively against bank memos, so they are kept upper case.
func NormalizeOrderCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
