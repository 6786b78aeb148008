package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/identity"
	"storefront/internal/service/order"
	"storefront/pkg/utils"
)

// OrderHandler order handler
type OrderHandler struct {
	orderService order.OrderService
}

// NewOrderHandler creates an order handler
func NewOrderHandler(orderService order.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GetOrder returns an order by order number. Orders belonging to a
// different shopper read as not found.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	if orderNo == "" {
		utils.Error(c, utils.CodeInvalidParam, "order_no is required")
		return
	}

	buyerID := identity.Resolve(c)

	o, err := h.orderService.GetOrderByOrderNo(c.Request.Context(), orderNo)
	if err != nil || o.BuyerID != buyerID {
		utils.Error(c, utils.CodeOrderNotFound, "order not found")
		return
	}

	utils.SuccessResponse(c, o)
}

// ListOrders lists the shopper's orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	buyerID := identity.Resolve(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	orders, total, err := h.orderService.ListBuyerOrders(c.Request.Context(), buyerID, page, pageSize)
	if err != nil {
		utils.Error(c, utils.CodeInternalError, "failed to list orders")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"orders":    orders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
