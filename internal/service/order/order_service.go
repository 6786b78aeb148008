package order

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/pkg/log"
	"storefront/pkg/snowflake"
)

// ErrEmptyBasketOnCheckout is returned when order creation is attempted
// against a basket with no items. Callers treat it as recoverable.
var ErrEmptyBasketOnCheckout = errors.New("basket has no items on checkout")

// OrderService order service interface
type OrderService interface {
	// Create an order from the basket's current lines, shipped to address
	CreateOrder(ctx context.Context, basketID uint64, address model.Address) (*model.Order, error)

	// Get order by order number
	GetOrderByOrderNo(ctx context.Context, orderNo string) (*model.Order, error)

	// List buyer orders
	ListBuyerOrders(ctx context.Context, buyerID string, page, pageSize int) ([]*model.Order, int64, error)
}

// orderService order service implementation
type orderService struct {
	orderRepo   repository.OrderRepository
	basketRepo  repository.BasketRepository
	idGenerator *snowflake.IDGenerator
}

// NewOrderService creates an order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	basketRepo repository.BasketRepository,
	idGenerator *snowflake.IDGenerator,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		basketRepo:  basketRepo,
		idGenerator: idGenerator,
	}
}

// CreateOrder converts the basket into an order. The basket is read at call
// time, so quantity updates applied beforehand are reflected in the order.
func (s *orderService) CreateOrder(ctx context.Context, basketID uint64, address model.Address) (*model.Order, error) {
	basket, err := s.basketRepo.GetByID(ctx, basketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load basket: %w", err)
	}

	if basket.IsEmpty() {
		return nil, ErrEmptyBasketOnCheckout
	}

	orderNo := model.FormatOrderNo(s.idGenerator.NextID())

	items := make([]model.OrderItem, 0, len(basket.Items))
	for _, line := range basket.Items {
		items = append(items, model.OrderItem{
			ProductID: line.ProductID,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	order := &model.Order{
		OrderNo: orderNo,
		BuyerID: basket.BuyerID,
		ShipTo:  address,
		Total:   basket.Total(),
		Status:  model.OrderStatusPending,
		Items:   items,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		log.WithFields(map[string]interface{}{
			"basket_id": basketID,
			"error":     err.Error(),
		}).Error("Failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"order_no": orderNo,
		"buyer_id": basket.BuyerID,
		"total":    order.Total,
		"lines":    len(items),
	}).Info("Order created")

	return order, nil
}

// GetOrderByOrderNo gets an order by order number
func (s *orderService) GetOrderByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	return s.orderRepo.GetByOrderNo(ctx, orderNo)
}

// ListBuyerOrders lists buyer orders
func (s *orderService) ListBuyerOrders(ctx context.Context, buyerID string, page, pageSize int) ([]*model.Order, int64, error) {
	return s.orderRepo.ListBuyerOrders(ctx, buyerID, page, pageSize)
}
