package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/pkg/utils"
)

const (
	// AuthorizationHeader authorization header name
	AuthorizationHeader = "Authorization"
	// BearerPrefix bearer token prefix
	BearerPrefix = "Bearer "
	// UserIDKey user ID context key
	UserIDKey = "user_id"
	// UsernameKey username context key
	UsernameKey = "username"
)

// UserInfo authenticated shopper info
type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// TokenValidator validates a bearer token and returns the shopper it belongs to
type TokenValidator func(token string) (*UserInfo, error)

// Auth authentication middleware. Rejects requests without a valid token.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.Error(c, utils.CodeUnauthorized, "Missing or malformed authorization header")
			c.Abort()
			return
		}

		userInfo, err := validator(token)
		if err != nil {
			utils.Error(c, utils.CodeUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userInfo.ID)
		c.Set(UsernameKey, userInfo.Username)
		c.Next()
	}
}

// OptionalAuth authentication middleware that lets anonymous requests
// through. A valid token marks the session as signed in; anything else
// leaves the request anonymous so the basket cookie can identify it.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		userInfo, err := validator(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(UserIDKey, userInfo.ID)
		c.Set(UsernameKey, userInfo.Username)
		c.Next()
	}
}

// bearerToken extracts the bearer token from the request
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", false
	}

	token := strings.TrimPrefix(authHeader, BearerPrefix)
	return token, token != ""
}

// GetUsername gets the authenticated username from the context
func GetUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(UsernameKey)
	if !exists {
		return "", false
	}

	if name, ok := username.(string); ok && name != "" {
		return name, true
	}
	return "", false
}

// GetUserID gets the authenticated user ID from the context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}

	if id, ok := userID.(uint64); ok {
		return id, true
	}
	return 0, false
}
