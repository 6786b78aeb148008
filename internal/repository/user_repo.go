package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"storefront/internal/model"
)

// UserRepository user repository interface
type UserRepository interface {
	// Create user
	Create(ctx context.Context, user *model.User) error

	// Get user by username
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// Update last login time
	UpdateLastLogin(ctx context.Context, userID uint64) error

	// Check if username exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// userRepository user repository implementation
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a user
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByUsername gets a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin updates the user's last login time
func (r *userRepository) UpdateLastLogin(ctx context.Context, userID uint64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login_at", &now).Error
}

// ExistsByUsername checks if a username exists
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
