package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"
	"storefront/internal/model"
)

// BasketRepository basket repository interface
type BasketRepository interface {
	// Get basket with its items by ID
	GetByID(ctx context.Context, id uint64) (*model.Basket, error)

	// Get the buyer's basket, creating an empty one if none exists
	GetOrCreateByBuyerID(ctx context.Context, buyerID string) (*model.Basket, error)

	// Apply a quantity update to the basket's lines (zero removes the line)
	SetQuantities(ctx context.Context, basketID uint64, update model.QuantityUpdate) error

	// Delete the basket and its items
	Delete(ctx context.Context, basketID uint64) error
}

// basketRepository basket repository implementation
type basketRepository struct {
	db *gorm.DB
}

// NewBasketRepository creates a basket repository
func NewBasketRepository(db *gorm.DB) BasketRepository {
	return &basketRepository{db: db}
}

// GetByID gets a basket with its items
func (r *basketRepository) GetByID(ctx context.Context, id uint64) (*model.Basket, error) {
	var basket model.Basket
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&basket).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("basket not found")
		}
		return nil, err
	}
	return &basket, nil
}

// GetOrCreateByBuyerID gets the buyer's basket, creating one if absent
func (r *basketRepository) GetOrCreateByBuyerID(ctx context.Context, buyerID string) (*model.Basket, error) {
	var basket model.Basket
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_id = ?", buyerID).
		First(&basket).Error

	if err == nil {
		return &basket, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	basket = model.Basket{BuyerID: buyerID}
	if err := r.db.WithContext(ctx).Create(&basket).Error; err != nil {
		return nil, err
	}
	return &basket, nil
}

// SetQuantities applies the update to the basket's existing lines. Lines
// whose product ID is absent from the update are left untouched; a quantity
// of zero removes the line.
func (r *basketRepository) SetQuantities(ctx context.Context, basketID uint64, update model.QuantityUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []model.BasketItem
		if err := tx.Where("basket_id = ?", basketID).Find(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			quantity, ok := update[strconv.FormatUint(item.ProductID, 10)]
			if !ok {
				continue
			}

			if quantity == 0 {
				if err := tx.Delete(&model.BasketItem{}, item.ID).Error; err != nil {
					return err
				}
				continue
			}

			if err := tx.Model(&model.BasketItem{}).
				Where("id = ?", item.ID).
				Update("quantity", quantity).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete deletes the basket and its items
func (r *basketRepository) Delete(ctx context.Context, basketID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("basket_id = ?", basketID).Delete(&model.BasketItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Basket{}, basketID).Error
	})
}
