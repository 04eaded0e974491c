/*
Package shared holds the domain-layer building blocks common to all
subdomains: aggregate and entity contracts, domain events, structured
domain errors, and validation results.

Error design:
 1. Sentinel errors support errors.Is for type-safe classification.
 2. Structured domain errors capture the stack at creation time and format it
    lazily, so logs can point at the origin without paying for formatting on
    the happy path.
 3. Domain errors carry no transport concepts (no HTTP status codes).
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors classifying domain failures. Use errors.Is against these;
// the structured constructors below wrap them with context and a stack.
var (
	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a resource conflict, such as a concurrent
	// modification detected by the optimistic lock.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput marks a structural validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDomainRule marks a business-rule violation on an otherwise
	// well-formed request.
	ErrDomainRule = errors.New("domain rule violated")
)

// DomainError is a structured error carrying business context and the stack
// of its creation point. It supports errors.Is and errors.As through Unwrap.
type DomainError struct {
	// Err is the underlying sentinel, used by errors.Is.
	Err error

	// Entity names the aggregate or entity the error belongs to.
	Entity string

	// Message is the human-readable description.
	Message string

	// Field optionally names the offending field for validation errors.
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack formats the captured stack on demand.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack captures the current call stack. skip is the number of frames
// to drop, usually 3: runtime.Callers, CaptureStack, and the constructor.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders captured frames, filtering runtime internals and
// keeping at most 10 frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// NewNotFoundError creates a "not found" domain error with a stack.
func NewNotFoundError(entity, message string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewConflictError creates a "conflict" domain error with a stack.
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError creates a structural validation error with a stack.
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewDomainRuleError creates a business-rule violation error with a stack.
func NewDomainRuleError(entity, reason string) error {
	return &DomainError{
		Err:     ErrDomainRule,
		Entity:  entity,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that can report their creation stack.
// The API layer uses it to log the origin of a failure.
type Stacker interface {
	Stack() []string
}
