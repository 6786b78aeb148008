package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront/internal/identity"
	"storefront/internal/model"
)

func newOrderRouter(orderSvc *MockOrderService) *gin.Engine {
	handler := NewOrderHandler(orderSvc)
	router := gin.New()
	router.GET("/api/v1/orders", handler.ListOrders)
	router.GET("/api/v1/orders/:order_no", handler.GetOrder)
	return router
}

func TestOrderHandler_GetOrder(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		orderSvc := &MockOrderService{}
		router := newOrderRouter(orderSvc)

		token := "11112222-3333-4444-5555-666677778888"
		orderSvc.On("GetOrderByOrderNo", mock.Anything, "SF1001").
			Return(&model.Order{OrderNo: "SF1001", BuyerID: token}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/orders/SF1001", nil)
		req.AddCookie(&http.Cookie{Name: identity.BasketCookieName, Value: token})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("another shopper's order reads as not found", func(t *testing.T) {
		orderSvc := &MockOrderService{}
		router := newOrderRouter(orderSvc)

		orderSvc.On("GetOrderByOrderNo", mock.Anything, "SF1001").
			Return(&model.Order{OrderNo: "SF1001", BuyerID: "someone-else"}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/orders/SF1001", nil)
		req.AddCookie(&http.Cookie{Name: identity.BasketCookieName, Value: "11112222-3333-4444-5555-666677778888"})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		orderSvc := &MockOrderService{}
		router := newOrderRouter(orderSvc)

		orderSvc.On("GetOrderByOrderNo", mock.Anything, "SF9999").
			Return(nil, assert.AnError)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/orders/SF9999", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_ListOrders(t *testing.T) {
	orderSvc := &MockOrderService{}
	router := newOrderRouter(orderSvc)

	orderSvc.On("ListBuyerOrders", mock.Anything, mock.Anything, 1, 20).
		Return([]*model.Order{{OrderNo: "SF1001"}}, int64(1), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/orders", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	orderSvc.AssertExpectations(t)
}
