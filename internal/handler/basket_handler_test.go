package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront/internal/model"
	"storefront/internal/service/checkout"
)

func newBasketRouter(basketSvc *MockBasketService) *gin.Engine {
	handler := NewBasketHandler(basketSvc)
	router := gin.New()
	router.GET("/api/v1/basket", handler.GetBasket)
	router.POST("/api/v1/basket", handler.UpdateBasket)
	return router
}

func TestBasketHandler_GetBasket(t *testing.T) {
	basketSvc := &MockBasketService{}
	router := newBasketRouter(basketSvc)

	basketSvc.On("GetOrCreateBasketForUser", mock.Anything, mock.Anything).
		Return(&model.Basket{
			ID: 7,
			Items: []model.BasketItem{
				{ProductID: 10, UnitPrice: 1299, Quantity: 2},
			},
		}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/basket", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	basketSvc.AssertExpectations(t)
}

func TestBasketHandler_UpdateBasket(t *testing.T) {
	t.Run("applies last-write-wins quantities", func(t *testing.T) {
		basketSvc := &MockBasketService{}
		router := newBasketRouter(basketSvc)

		basketSvc.On("GetOrCreateBasketForUser", mock.Anything, mock.Anything).
			Return(&model.Basket{ID: 7}, nil)
		basketSvc.On("SetQuantities", mock.Anything, uint64(7), model.QuantityUpdate{"10": 5}).
			Return(nil)
		basketSvc.On("GetBasket", mock.Anything, uint64(7)).
			Return(&model.Basket{ID: 7}, nil)

		body, _ := json.Marshal(UpdateBasketRequest{
			Items: []checkout.ItemQuantity{
				{ProductID: "10", Quantity: 2},
				{ProductID: "10", Quantity: 5},
			},
		})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/basket", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		basketSvc.AssertExpectations(t)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		basketSvc := &MockBasketService{}
		router := newBasketRouter(basketSvc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/basket", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		basketSvc.AssertNotCalled(t, "SetQuantities", mock.Anything, mock.Anything, mock.Anything)
	})
}
