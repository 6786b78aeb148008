package basket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront/internal/model"
)

// MockBasketRepository mock basket repository
type MockBasketRepository struct {
	mock.Mock
}

func (m *MockBasketRepository) GetByID(ctx context.Context, id uint64) (*model.Basket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketRepository) GetOrCreateByBuyerID(ctx context.Context, buyerID string) (*model.Basket, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketRepository) SetQuantities(ctx context.Context, basketID uint64, update model.QuantityUpdate) error {
	args := m.Called(ctx, basketID, update)
	return args.Error(0)
}

func (m *MockBasketRepository) Delete(ctx context.Context, basketID uint64) error {
	args := m.Called(ctx, basketID)
	return args.Error(0)
}

func TestGetOrCreateBasketForUser(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		setup    func(*MockBasketRepository)
		wantErr  bool
		wantID   uint64
	}{
		{
			name:     "existing basket",
			identity: "alice",
			setup: func(repo *MockBasketRepository) {
				repo.On("GetOrCreateByBuyerID", mock.Anything, "alice").Return(&model.Basket{
					ID:      7,
					BuyerID: "alice",
					Items: []model.BasketItem{
						{ID: 1, BasketID: 7, ProductID: 10, UnitPrice: 1299, Quantity: 2},
					},
				}, nil)
			},
			wantID: 7,
		},
		{
			name:     "fresh basket for anonymous token",
			identity: "8b9f2c1e-1111-2222-3333-444455556666",
			setup: func(repo *MockBasketRepository) {
				repo.On("GetOrCreateByBuyerID", mock.Anything, "8b9f2c1e-1111-2222-3333-444455556666").
					Return(&model.Basket{ID: 42, BuyerID: "8b9f2c1e-1111-2222-3333-444455556666"}, nil)
			},
			wantID: 42,
		},
		{
			name:     "repository failure propagates",
			identity: "alice",
			setup: func(repo *MockBasketRepository) {
				repo.On("GetOrCreateByBuyerID", mock.Anything, "alice").Return(nil, assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBasketRepository)
			tt.setup(repo)

			svc := NewBasketService(repo, nil)
			basket, err := svc.GetOrCreateBasketForUser(context.Background(), tt.identity)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, basket)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, basket.ID)
				assert.Equal(t, tt.identity, basket.BuyerID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSetQuantities(t *testing.T) {
	repo := new(MockBasketRepository)
	update := model.QuantityUpdate{"10": 3, "11": 0}
	repo.On("SetQuantities", mock.Anything, uint64(7), update).Return(nil)

	svc := NewBasketService(repo, nil)
	err := svc.SetQuantities(context.Background(), 7, update)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSetQuantitiesError(t *testing.T) {
	repo := new(MockBasketRepository)
	repo.On("SetQuantities", mock.Anything, uint64(7), mock.Anything).Return(assert.AnError)

	svc := NewBasketService(repo, nil)
	err := svc.SetQuantities(context.Background(), 7, model.QuantityUpdate{"10": 1})

	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteBasket(t *testing.T) {
	repo := new(MockBasketRepository)
	repo.On("Delete", mock.Anything, uint64(7)).Return(nil)

	svc := NewBasketService(repo, nil)
	err := svc.DeleteBasket(context.Background(), 7)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetBasket(t *testing.T) {
	repo := new(MockBasketRepository)
	repo.On("GetByID", mock.Anything, uint64(7)).Return(&model.Basket{ID: 7, BuyerID: "alice"}, nil)

	svc := NewBasketService(repo, nil)
	basket, err := svc.GetBasket(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, uint64(7), basket.ID)
	repo.AssertExpectations(t)
}
