/*
Package sale errors.

Sentinels support errors.Is classification; the constructors wrap them with
context and a creation-point stack (see domain/shared).
*/
package sale

import (
	"errors"

	"salesvc/domain/shared"
)

var (
	// ErrSaleNotFound is returned when no sale exists for the requested ID
	// or sale number.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrItemNotFound is returned by CancelItem when the sale holds no item
	// with the requested ID.
	ErrItemNotFound = errors.New("item not found in sale")

	// ErrSaleAlreadyCancelled is returned by Cancel on a cancelled sale.
	// Cancellation is terminal; repeating it is rejected, not ignored.
	ErrSaleAlreadyCancelled = errors.New("sale is already cancelled")

	// ErrItemAlreadyRemoved is returned by CancelItem when the item was
	// removed earlier. Like sale cancellation, item removal is terminal.
	ErrItemAlreadyRemoved = errors.New("item is already removed from sale")

	// ErrTooManyItems rejects line items above the 20-unit ceiling.
	ErrTooManyItems = errors.New("cannot sell more than 20 identical items")

	// ErrDiscountNotAllowed rejects caller-supplied discounts for
	// quantities below the first discount tier.
	ErrDiscountNotAllowed = errors.New("no discount allowed for quantities below 4 items")

	// ErrConcurrentModification is returned by repositories when the
	// optimistic lock detects a stale aggregate version.
	ErrConcurrentModification = errors.New("sale was modified by another transaction, please retry")

	// ErrValidationFailed is returned when the aggregate's structural
	// validation rejects a sale before persistence.
	ErrValidationFailed = errors.New("sale validation failed")
)

// NewSaleNotFoundError creates a sale-not-found error with a stack.
// Supports errors.Is(err, ErrSaleNotFound) and shared.Stacker.
func NewSaleNotFoundError(saleID string) error {
	return &saleDomainError{
		sentinel: ErrSaleNotFound,
		entity:   "sale",
		message:  "sale not found: " + saleID,
		stack:    shared.CaptureStack(3),
	}
}

// NewItemNotFoundError creates an item-not-found error listing the items the
// sale actually holds, so callers can see what was available.
func NewItemNotFoundError(saleID, itemID, availableItems string) error {
	msg := "item " + itemID + " not found in sale " + saleID
	if availableItems != "" {
		msg += ". Available items: " + availableItems
	}
	return &saleDomainError{
		sentinel: ErrItemNotFound,
		entity:   "sale",
		message:  msg,
		stack:    shared.CaptureStack(3),
	}
}

// NewConcurrentModificationError creates an optimistic-lock conflict error.
func NewConcurrentModificationError(saleID string) error {
	return &saleDomainError{
		sentinel: ErrConcurrentModification,
		entity:   "sale",
		message:  "sale " + saleID + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}

// NewValidationFailedError aggregates structural validation messages into a
// single error, keeping the whole operation all-or-nothing.
func NewValidationFailedError(joinedMessages string) error {
	return &saleDomainError{
		sentinel: ErrValidationFailed,
		entity:   "sale",
		message:  "Sale validation failed: " + joinedMessages,
		stack:    shared.CaptureStack(3),
	}
}

// saleDomainError implements error, Unwrap and shared.Stacker.
type saleDomainError struct {
	sentinel error
	entity   string
	message  string
	stack    []uintptr
}

func (e *saleDomainError) Error() string {
	return e.message
}

func (e *saleDomainError) Unwrap() error {
	return e.sentinel
}

func (e *saleDomainError) Stack() []string {
	if len(e.stack) == 0 {
		return nil
	}

	return shared.FormatStack(e.stack)
}
