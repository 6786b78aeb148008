package basket

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/pkg/log"
)

// BasketService basket service interface
type BasketService interface {
	// Get the shopper's open basket, creating an empty one if none exists
	GetOrCreateBasketForUser(ctx context.Context, identity string) (*model.Basket, error)

	// Get a basket with its items by ID
	GetBasket(ctx context.Context, basketID uint64) (*model.Basket, error)

	// Apply a quantity update to the basket (zero removes the line)
	SetQuantities(ctx context.Context, basketID uint64, update model.QuantityUpdate) error

	// Delete the basket and its items
	DeleteBasket(ctx context.Context, basketID uint64) error
}

// basketService basket service implementation
type basketService struct {
	repo  repository.BasketRepository
	cache *ViewCache
}

// NewBasketService creates a basket service. The cache is optional; a nil
// cache means every read goes to the repository.
func NewBasketService(repo repository.BasketRepository, cache *ViewCache) BasketService {
	return &basketService{
		repo:  repo,
		cache: cache,
	}
}

// GetOrCreateBasketForUser returns the shopper's basket, creating one if absent
func (s *basketService) GetOrCreateBasketForUser(ctx context.Context, identity string) (*model.Basket, error) {
	if s.cache != nil {
		if basket, ok := s.cache.Get(ctx, identity); ok {
			return basket, nil
		}
	}

	basket, err := s.repo.GetOrCreateByBuyerID(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize basket: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, basket)
	}

	return basket, nil
}

// GetBasket gets a basket with its items
func (s *basketService) GetBasket(ctx context.Context, basketID uint64) (*model.Basket, error) {
	basket, err := s.repo.GetByID(ctx, basketID)
	if err != nil {
		return nil, err
	}
	return basket, nil
}

// SetQuantities applies the update and invalidates the basket's cached view
func (s *basketService) SetQuantities(ctx context.Context, basketID uint64, update model.QuantityUpdate) error {
	if err := s.repo.SetQuantities(ctx, basketID, update); err != nil {
		return fmt.Errorf("failed to set quantities: %w", err)
	}

	s.invalidate(ctx, basketID)

	log.WithFields(map[string]interface{}{
		"basket_id": basketID,
		"lines":     len(update),
	}).Info("Basket quantities updated")

	return nil
}

// DeleteBasket deletes the basket and invalidates its cached view
func (s *basketService) DeleteBasket(ctx context.Context, basketID uint64) error {
	// Resolve the owner before the rows go away
	s.invalidate(ctx, basketID)

	if err := s.repo.Delete(ctx, basketID); err != nil {
		return fmt.Errorf("failed to delete basket: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"basket_id": basketID,
	}).Info("Basket deleted")

	return nil
}

// invalidate drops the cached view of the basket's owner, if any
func (s *basketService) invalidate(ctx context.Context, basketID uint64) {
	if s.cache == nil {
		return
	}

	basket, err := s.repo.GetByID(ctx, basketID)
	if err != nil {
		return
	}
	s.cache.Invalidate(ctx, basket.BuyerID)
}
