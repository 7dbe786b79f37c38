package dto

import "net/http"

// Error codes shared between the domain layer and HTTP responses.
// Domain errors carry these codes directly; the handlers only translate
// them to status codes.
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when input fails validation
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound is used when a resource does not exist
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeEmailTaken is used when registering an address that already exists
	ErrCodeEmailTaken = "EMAIL_TAKEN"
	// ErrCodeDuplicateItem is used when a create collides with an existing item
	ErrCodeDuplicateItem = "DUPLICATE_ITEM"
	// ErrCodeInsufficientStock is used when a consume exceeds the held quantity
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeStoreWrite is used when a persistence operation fails
	ErrCodeStoreWrite = "STORE_WRITE_ERROR"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeEmailTaken:        http.StatusConflict,
	ErrCodeDuplicateItem:     http.StatusConflict,
	ErrCodeInsufficientStock: http.StatusConflict,
	ErrCodeStoreWrite:        http.StatusInternalServerError,
	ErrCodeRateLimited:       http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:   http.StatusRequestEntityTooLarge,

	// Token failures from the auth middleware all resolve to 401
	"TOKEN_EXPIRED":      http.StatusUnauthorized,
	"INVALID_TOKEN":      http.StatusUnauthorized,
	"INVALID_TOKEN_TYPE": http.StatusUnauthorized,
	"TOKEN_REVOKED":      http.StatusUnauthorized,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes resolve to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ValidationDetail describes a single field validation failure
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorData is the payload attached to validation error responses
type ValidationErrorData struct {
	Details []ValidationDetail `json:"details"`
}

// NewValidationErrorResponse creates a 400 response with per-field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: requestID,
		},
		Data: ValidationErrorData{Details: details},
	}
}
