package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/identity"
	"storefront/internal/model"
	"storefront/internal/service/basket"
	"storefront/internal/service/checkout"
	"storefront/internal/service/order"
	"storefront/pkg/log"
	"storefront/pkg/utils"
)

// CheckoutRequest is the submitted checkout form
type CheckoutRequest struct {
	Items   []checkout.ItemQuantity `json:"items" binding:"required,dive"`
	Address model.Address           `json:"address" binding:"required"`
}

// CheckoutHandler checkout handler
type CheckoutHandler struct {
	basketService   basket.BasketService
	checkoutService checkout.CheckoutService
	orderService    order.OrderService
}

// NewCheckoutHandler creates a checkout handler
func NewCheckoutHandler(
	basketService basket.BasketService,
	checkoutService checkout.CheckoutService,
	orderService order.OrderService,
) *CheckoutHandler {
	return &CheckoutHandler{
		basketService:   basketService,
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// GetCheckout returns the shopper's materialized basket for review
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	buyerID := identity.Resolve(c)

	b, err := h.basketService.GetOrCreateBasketForUser(c.Request.Context(), buyerID)
	if err != nil {
		log.WithError(err).Error("Failed to materialize basket")
		utils.Error(c, utils.CodeInternalError, "failed to load basket")
		return
	}

	utils.SuccessResponse(c, b)
}

// PostCheckout commits the shopper's basket to an order. Validation failures
// are rejected before any state changes; an empty basket redirects back to
// the basket view.
func (h *CheckoutHandler) PostCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	buyerID := identity.Resolve(c)

	b, err := h.basketService.GetOrCreateBasketForUser(c.Request.Context(), buyerID)
	if err != nil {
		log.WithError(err).Error("Failed to materialize basket")
		utils.Error(c, utils.CodeInternalError, "checkout failed")
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), b.ID, req.Items, req.Address)
	if err != nil {
		log.WithFields(map[string]interface{}{
			"basket_id": b.ID,
			"error":     err.Error(),
		}).Error("Checkout failed")
		utils.Error(c, utils.CodeInternalError, "checkout failed")
		return
	}

	if result.Outcome == checkout.OutcomeEmptyBasket {
		c.Redirect(http.StatusSeeOther, "/api/v1/basket")
		return
	}

	c.Redirect(http.StatusSeeOther, "/api/v1/checkout/success?order_no="+result.Order.OrderNo)
}

// GetSuccess returns the committed order behind the success view. Orders
// belonging to a different shopper read as not found.
func (h *CheckoutHandler) GetSuccess(c *gin.Context) {
	orderNo := c.Query("order_no")
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
