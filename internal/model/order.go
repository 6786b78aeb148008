package model

import (
	"fmt"
	"strings"
	"time"
)

// Address shipping destination for an order
type Address struct {
	Street  string `gorm:"type:varchar(180)" json:"street" binding:"required"`
	City    string `gorm:"type:varchar(100)" json:"city" binding:"required"`
	State   string `gorm:"type:varchar(60)" json:"state"`
	Country string `gorm:"type:varchar(90)" json:"country" binding:"required"`
	ZipCode string `gorm:"type:varchar(18)" json:"zip_code"`
}

// String renders the address as a single shipping line
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.Country, a.ZipCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Order is created from a basket at checkout
type Order struct {
	ID        uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo   string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`
	BuyerID   string      `gorm:"type:varchar(64);not null;index" json:"buyer_id"`
	ShipTo    Address     `gorm:"embedded;embeddedPrefix:ship_" json:"ship_to"`
	Total     int64       `gorm:"type:bigint;not null" json:"total"` // cents
	Status    int8        `gorm:"type:tinyint;not null;default:1;index" json:"status"`
	CreatedAt time.Time   `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time   `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName set name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order, priced at commit time
type OrderItem struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint64    `gorm:"type:bigint unsigned;not null;index" json:"order_id"`
	OrderNo   string    `gorm:"type:varchar(32);not null;index" json:"order_no"`
	ProductID uint64    `gorm:"type:bigint unsigned;not null" json:"product_id"`
	UnitPrice int64     `gorm:"type:bigint;not null" json:"unit_price"` // cents
	Quantity  int       `gorm:"type:int;not null" json:"quantity"`
	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName set name
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderStatus order status const
const (
	OrderStatusPending   = 1
	OrderStatusShipped   = 2
	OrderStatusCancelled = 3
)

// IsPending check order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// GetTotalDollars get order total in dollars
func (o *Order) GetTotalDollars() float64 {
	return float64(o.Total) / 100
}

// Amount returns the line subtotal in cents
func (oi *OrderItem) Amount() int64 {
	return oi.UnitPrice * int64(oi.Quantity)
}

// FormatOrderNo builds an order number from a generated ID
func FormatOrderNo(id int64) string {
	return fmt.Sprintf("SF%d", id)
}
