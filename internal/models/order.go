package models

import (
	"time"
)

// Order is one checkout attempt. Amount is fixed at creation (sum of line
// totals); reference, tracker and delivery state mutate afterwards.
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	Amount          float64     `gorm:"not null" json:"amount"`
	DeliveryAddress string      `gorm:"size:255" json:"delivery_address"`
	Reference       *string     `gorm:"size:128" json:"reference"`
	IsDelivered     bool        `gorm:"not null;default:false" json:"is_delivered"`
	DeliveryTracker *string     `gorm:"size:255" json:"delivery_tracker"`
	TransactionID   *uint       `gorm:"index" json:"transaction_id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem links an order to a product line. Written in a batch at order
// creation and never updated.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
