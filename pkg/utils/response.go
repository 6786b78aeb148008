package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response standard response structure
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// SuccessResponse returns success response
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      0,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// ErrorResponse returns error response
func ErrorResponse(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Response{
		Code:      httpCode,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

// Error returns error response with business code
func Error(c *gin.Context, code ResponseCode, message string) {
	c.JSON(httpStatusFor(code), Response{
		Code:      int(code),
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

// httpStatusFor maps business codes onto HTTP status codes
func httpStatusFor(code ResponseCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUserNotFound, CodeBasketNotFound, CodeOrderNotFound:
		return http.StatusNotFound
	case CodeUserExists:
		return http.StatusConflict
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
