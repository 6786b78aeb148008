package identity

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/middleware"
)

const (
	// BasketCookieName is the fixed name of the anonymous identity cookie
	BasketCookieName = "storefront_basket"

	// cookieLifetimeYears is how long an anonymous identity stays valid
	cookieLifetimeYears = 10
)

// Resolve determines the acting shopper's identity for the current request.
// An authenticated session wins and touches no cookie. Otherwise the
// anonymous token cookie is reused verbatim, or minted once and set with a
// ten-year expiry computed from today's date.
func Resolve(c *gin.Context) string {
	if username, ok := middleware.GetUsername(c); ok {
		return username
	}

	if token, err := c.Cookie(BasketCookieName); err == nil && token != "" {
		return token
	}

	token := uuid.NewString()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:    BasketCookieName,
		Value:   token,
		Path:    "/",
		Expires: cookieExpiry(time.Now()),
	})
	return token
}

// cookieExpiry truncates now to day granularity before adding the lifetime
func cookieExpiry(now time.Time) time.Time {
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	return midnight.AddDate(cookieLifetimeYears, 0, 0)
}
