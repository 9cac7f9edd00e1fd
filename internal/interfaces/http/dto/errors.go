package dto

import (
	"net/http"
	"strings"
)

// API error codes. Domain codes with a generic meaning are renamed to one of
// these; the rest keep their own name in responses.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidState = "ERR_INVALID_STATE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"

	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

var statusByCode = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeTokenInvalid:        http.StatusUnauthorized,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,

	// domain codes answered under their own name
	"HAS_ACTIVE_CHILDREN": http.StatusConflict,
	"ORDER_ALREADY_PAID":  http.StatusConflict,
	"ALREADY_DELETED":     http.StatusConflict,
	"CATEGORY_DELETED":    http.StatusConflict,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"EMPTY_ORDER":         http.StatusBadRequest,
	"IMAGE_REQUIRED":      http.StatusBadRequest,
	"PRODUCT_DELETED":     http.StatusBadRequest,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,
	"STORAGE_UNAVAILABLE": http.StatusServiceUnavailable,
}

var renamedCodes = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"REQUEST_TOO_LARGE":    ErrCodeRequestTooLarge,
	"RATE_LIMIT_EXCEEDED":  ErrCodeRateLimited,
}

// GetHTTPStatus returns the HTTP status for a response code. Unlisted codes
// ending in _NOT_FOUND are 404, those starting with INVALID_ are 400 and
// anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NormalizeErrorCode returns the response code for a domain error code
func NormalizeErrorCode(code string) string {
	if renamed, ok := renamedCodes[code]; ok {
		return renamed
	}
	return code
}
