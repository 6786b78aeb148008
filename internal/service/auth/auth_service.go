package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/utils"
	"storefront/pkg/log"
)

// RegisterRequest register request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=6,max=64"`
}

// LoginRequest login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse token response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// AuthService authentication service interface
type AuthService interface {
	// Register user
	Register(ctx context.Context, req *RegisterRequest) (*model.User, error)

	// Login user
	Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error)

	// Logout user
	Logout(ctx context.Context, userID uint64, token string) error

	// Validate token
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)

	// Refresh token
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
}

// authService authentication service implementation
type authService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	redis      *redis.Client
}

// NewAuthService creates an authentication service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	redis *redis.Client,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		redis:      redis,
	}
}

// Register registers a user
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		log.WithError(err).Error("Failed to check username")
		return nil, errors.New("system error")
	}
	if exists {
		return nil, errors.New("username already exists")
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		return nil, errors.New("system error")
	}

	var email *string
	if req.Email != "" {
		email = &req.Email
	}
	user := &model.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       model.UserStatusNormal,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		log.WithError(err).Error("Failed to create user")
		return nil, errors.New("registration failed")
	}

	log.WithFields(map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return user, nil
}

// Login logs in a user
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		log.WithFields(map[string]interface{}{
			"username": req.Username,
		}).Warn("User not found")
		return nil, errors.New("username or password incorrect")
	}

	if !user.IsActive() {
		return nil, errors.New("account disabled")
	}

	if err := s.checkLoginAttempts(ctx, user.ID); err != nil {
		return nil, err
	}

	if !s.verifyPassword(req.Password, user.PasswordHash) {
		s.recordLoginFailure(ctx, user.ID)
		return nil, errors.New("username or password incorrect")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		log.WithError(err).Error("Failed to generate access token")
		return nil, errors.New("system error")
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		log.WithError(err).Error("Failed to generate refresh token")
		return nil, errors.New("system error")
	}

	tokenKey := fmt.Sprintf("auth:token:%d", user.ID)
	s.redis.Set(ctx, tokenKey, accessToken, 2*time.Hour)

	s.userRepo.UpdateLastLogin(ctx, user.ID)
	s.clearLoginFailures(ctx, user.ID)

	log.WithFields(map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User logged in")

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    7200,
		TokenType:    "Bearer",
	}, nil
}

// Logout logs out a user
func (s *authService) Logout(ctx context.Context, userID uint64, token string) error {
	tokenKey := fmt.Sprintf("auth:token:%d", userID)
	s.redis.Del(ctx, tokenKey)

	// Blacklist the token until it would have expired
	blacklistKey := fmt.Sprintf("auth:blacklist:%s", token)
	s.redis.Set(ctx, blacklistKey, "1", 2*time.Hour)

	log.WithFields(map[string]interface{}{
		"user_id": userID,
	}).Info("User logged out")
	return nil
}

// ValidateToken validates a token
func (s *authService) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	blacklistKey := fmt.Sprintf("auth:blacklist:%s", token)
	exists, _ := s.redis.Exists(ctx, blacklistKey).Result()
	if exists > 0 {
		return nil, errors.New("token invalid")
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	tokenKey := fmt.Sprintf("auth:token:%d", claims.UserID)
	storedToken, err := s.redis.Get(ctx, tokenKey).Result()
	if err != nil || storedToken != token {
		return nil, errors.New("token invalid")
	}

	return claims, nil
}

// RefreshToken refreshes a token
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, errors.New("refresh token invalid")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(claims.UserID, claims.Username)
	if err != nil {
		return nil, errors.New("generate token failed")
	}

	tokenKey := fmt.Sprintf("auth:token:%d", claims.UserID)
	s.redis.Set(ctx, tokenKey, accessToken, 2*time.Hour)

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    7200,
		TokenType:    "Bearer",
	}, nil
}

// hashPassword hashes a password with bcrypt
func (s *authService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword verifies a password against its bcrypt hash
func (s *authService) verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// checkLoginAttempts refuses login after repeated failures
func (s *authService) checkLoginAttempts(ctx context.Context, userID uint64) error {
	key := fmt.Sprintf("auth:login_attempts:%d", userID)
	attempts, _ := s.redis.Get(ctx, key).Int()

	if attempts >= 5 {
		return errors.New("login failed too many times, please try again in 30 minutes")
	}

	return nil
}

// recordLoginFailure records a login failure
func (s *authService) recordLoginFailure(ctx context.Context, userID uint64) {
	key := fmt.Sprintf("auth:login_attempts:%d", userID)
	s.redis.Incr(ctx, key)
	s.redis.Expire(ctx, key, 30*time.Minute)
}

// clearLoginFailures clears login failures
func (s *authService) clearLoginFailures(ctx context.Context, userID uint64) {
	key := fmt.Sprintf("auth:login_attempts:%d", userID)
	s.redis.Del(ctx, key)
}
