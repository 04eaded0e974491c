// Package errors defines application-level error codes and the translation
// from domain errors. Codes are transport-agnostic strings; the API layer
// owns the mapping to HTTP status.
package errors

import (
	"errors"
	"fmt"

	"salesvc/domain/sale"
	"salesvc/domain/shared"
)

type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"

	CodeSaleNotFound     ErrorCode = "SALE_NOT_FOUND"
	CodeItemNotFound     ErrorCode = "ITEM_NOT_FOUND"
	CodeDomainRule       ErrorCode = "DOMAIN_RULE_VIOLATION"
	CodeConcurrentModify ErrorCode = "CONCURRENT_MODIFICATION"
)

// AppError pairs a stable error code with a user-facing message.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

// FromDomainError classifies a domain error into an AppError. Unknown
// errors map to CodeInternal and keep their cause for logging, not for the
// response body.
func FromDomainError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sale.ErrSaleNotFound):
		return Wrap(err, CodeSaleNotFound, err.Error())
	case errors.Is(err, sale.ErrItemNotFound):
		return Wrap(err, CodeItemNotFound, err.Error())
	case errors.Is(err, sale.ErrConcurrentModification):
		return Wrap(err, CodeConcurrentModify, err.Error())
	case errors.Is(err, sale.ErrValidationFailed):
		return Wrap(err, CodeValidation, err.Error())
	case errors.Is(err, sale.ErrSaleAlreadyCancelled),
		errors.Is(err, sale.ErrItemAlreadyRemoved),
		errors.Is(err, sale.ErrTooManyItems),
		errors.Is(err, sale.ErrDiscountNotAllowed):
		return Wrap(err, CodeDomainRule, err.Error())
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, err.Error())
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		return Wrap(err, CodeValidation, err.Error())
	case errors.Is(err, shared.ErrDomainRule):
		return Wrap(err, CodeDomainRule, err.Error())
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
}
