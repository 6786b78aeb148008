package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"storefront/internal/model"
)

// OrderRepository order repository interface
type OrderRepository interface {
	// Create order with its items
	Create(ctx context.Context, order *model.Order) error

	// Get order by order number
	GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error)

	// List buyer orders
	ListBuyerOrders(ctx context.Context, buyerID string, page, pageSize int) ([]*model.Order, int64, error)
}

// orderRepository order repository implementation
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates an order
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if len(items) > 0 {
			for i := range items {
				items[i].OrderID = order.ID
				items[i].OrderNo = order.OrderNo
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		order.Items = items

		return nil
	})
}

// GetByOrderNo gets an order by order number
func (r *orderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_no = ?", orderNo).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, err
	}
	return &order, nil
}

// ListBuyerOrders lists buyer orders
func (r *orderRepository) ListBuyerOrders(ctx context.Context, buyerID string, page, pageSize int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64

	offset := (page - 1) * pageSize

	db := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("buyer_id = ?", buyerID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Preload("Items").
		Find(&orders).Error

	return orders, total, err
}
