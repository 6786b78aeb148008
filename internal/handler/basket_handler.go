package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/identity"
	"storefront/internal/service/basket"
	"storefront/internal/service/checkout"
	"storefront/pkg/log"
	"storefront/pkg/utils"
)

// UpdateBasketRequest is the submitted basket update
type UpdateBasketRequest struct {
	Items []checkout.ItemQuantity `json:"items" binding:"required,dive"`
}

// BasketHandler basket handler
type BasketHandler struct {
	basketService basket.BasketService
}

// NewBasketHandler creates a basket handler
func NewBasketHandler(basketService basket.BasketService) *BasketHandler {
	return &BasketHandler{
		basketService: basketService,
	}
}

// GetBasket returns the shopper's basket, creating an empty one if needed
func (h *BasketHandler) GetBasket(c *gin.Context) {
	buyerID := identity.Resolve(c)

	b, err := h.basketService.GetOrCreateBasketForUser(c.Request.Context(), buyerID)
	if err != nil {
		log.WithError(err).Error("Failed to materialize basket")
		utils.Error(c, utils.CodeInternalError, "failed to load basket")
		return
	}

	utils.SuccessResponse(c, b)
}

// UpdateBasket applies submitted quantities to the shopper's basket
func (h *BasketHandler) UpdateBasket(c *gin.Context) {
	var req UpdateBasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	buyerID := identity.Resolve(c)

	b, err := h.basketService.GetOrCreateBasketForUser(c.Request.Context(), buyerID)
	if err != nil {
		log.WithError(err).Error("Failed to materialize basket")
		utils.Error(c, utils.CodeInternalError, "failed to load basket")
		return
	}

	update := checkout.BuildQuantityUpdate(req.Items)
	if err := h.basketService.SetQuantities(c.Request.Context(), b.ID, update); err != nil {
		log.WithFields(map[string]interface{}{
			"basket_id": b.ID,
			"error":     err.Error(),
		}).Error("Failed to update basket")
		utils.Error(c, utils.CodeInternalError, "failed to update basket")
		return
	}

	updated, err := h.basketService.GetBasket(c.Request.Context(), b.ID)
	if err != nil {
		utils.Error(c, utils.CodeInternalError, "failed to load basket")
		return
	}

	utils.SuccessResponse(c, updated)
}
