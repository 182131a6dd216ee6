package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"

	ErrInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	ErrZeroBalance       ErrorCode = "ZERO_BALANCE"
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrSameAccount       ErrorCode = "SAME_ACCOUNT"
	ErrUnsupportedType   ErrorCode = "UNSUPPORTED_TYPE"
	ErrMissingAccount    ErrorCode = "MISSING_ACCOUNT"
	ErrLockTimeout       ErrorCode = "LOCK_TIMEOUT"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	if details != nil {
		logrus.WithField("code", code).Error(details)
	}
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// HasCode reports whether err, or any error it wraps, is an APIError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsRetryable reports whether the caller may safely retry the failed operation.
// Only lock acquisition timeouts qualify; nothing was mutated.
func IsRetryable(err error) bool {
	return HasCode(err, ErrLockTimeout)
}

func MapErrorToHTTPStatus(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict, ErrLockTimeout:
			return http.StatusConflict
		case ErrInvalidInput, ErrBadRequest, ErrInvalidAmount, ErrUnsupportedType, ErrMissingAccount:
			return http.StatusBadRequest
		case ErrZeroBalance, ErrInsufficientFunds, ErrSameAccount:
			return http.StatusUnprocessableEntity
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
