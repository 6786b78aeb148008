package model

import (
	"strconv"
	"time"
)

// Basket is a shopper's in-progress collection of items prior to order
// placement. BuyerID is the resolved shopper identity: an authenticated
// username or the anonymous basket cookie token.
type Basket struct {
	ID        uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID   string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"buyer_id"`
	CreatedAt time.Time    `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`
	Items     []BasketItem `gorm:"foreignKey:BasketID" json:"items"`
}

// TableName set name
func (Basket) TableName() string {
	return "baskets"
}

// BasketItem is one line of a basket
type BasketItem struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BasketID  uint64    `gorm:"type:bigint unsigned;not null;index" json:"basket_id"`
	ProductID uint64    `gorm:"type:bigint unsigned;not null;index" json:"product_id"`
	UnitPrice int64     `gorm:"type:bigint;not null" json:"unit_price"` // cents
	Quantity  int       `gorm:"type:int;not null" json:"quantity"`
	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName set name
func (BasketItem) TableName() string {
	return "basket_items"
}

// IsEmpty reports whether the basket has no items
func (b *Basket) IsEmpty() bool {
	return len(b.Items) == 0
}

// Total returns the basket total in cents
func (b *Basket) Total() int64 {
	var total int64
	for _, item := range b.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// TotalDollars returns the basket total in dollars
func (b *Basket) TotalDollars() float64 {
	return float64(b.Total()) / 100
}

// QuantityUpdate maps product identifiers (string form) to requested
// quantities. A quantity of zero means removal of the line.
type QuantityUpdate map[string]int

// Quantities returns the basket's current lines as a QuantityUpdate
func (b *Basket) Quantities() QuantityUpdate {
	update := make(QuantityUpdate, len(b.Items))
	for _, item := range b.Items {
		update[strconv.FormatUint(item.ProductID, 10)] = item.Quantity
	}
	return update
}
