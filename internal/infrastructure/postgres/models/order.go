package models

import (
	"time"

	"github.com/LavaJover/festival-order-service/internal/domain"
)

type OrderModel struct {
	OrderCode    string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"not null"`
	Phone        string `gorm:"not null;index:idx_orders_phone_status"`
	ClassName    string `gorm:"column:class_name"`
	Quantity     int64  `gorm:"not null"`
	Note         string
	Total        int64              `gorm:"not null"`
	Tickets      int64              `gorm:"not null;default:0"`
	FreePortions int64              `gorm:"not null;default:0"`
	Status       domain.OrderStatus `gorm:"size:16;not null;index:idx_orders_phone_status;index:idx_orders_status_created"`
	Delivered    bool               `gorm:"not null;default:false"`
	CreatedAt    time.Time          `gorm:"index:idx_orders_status_created"`
	UpdatedAt    time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
