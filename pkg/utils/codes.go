package utils

// ResponseCode business response code
type ResponseCode int

const (
	// CodeSuccess success
	CodeSuccess ResponseCode = 0

	// Parameter errors (1xxx)
	CodeInvalidParam ResponseCode = 1001

	// Auth errors (2xxx)
	CodeUnauthorized ResponseCode = 2001
	CodeForbidden    ResponseCode = 2002
	CodeUserNotFound ResponseCode = 2003
	CodeUserExists   ResponseCode = 2004

	// Basket errors (3xxx)
	CodeBasketNotFound ResponseCode = 3001
	CodeEmptyBasket    ResponseCode = 3002

	// Order errors (4xxx)
	CodeOrderNotFound ResponseCode = 4001

	// System errors (5xxx)
	CodeInternalError ResponseCode = 5001
	CodeServiceError  ResponseCode = 5002
	CodeDatabaseError ResponseCode = 5003
	CodeRateLimit     ResponseCode = 5004
)
