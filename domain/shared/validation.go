package shared

import "strings"

// ValidationResult aggregates structural validation failures as
// field -> message pairs. A result with no errors is valid.
type ValidationResult struct {
	errors []FieldError
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AddError records a failure for the given field.
func (r *ValidationResult) AddError(field, message string) {
	r.errors = append(r.errors, FieldError{Field: field, Message: message})
}

// IsValid reports whether no failures were recorded.
func (r *ValidationResult) IsValid() bool {
	return len(r.errors) == 0
}

// Errors returns the recorded failures in insertion order.
func (r *ValidationResult) Errors() []FieldError {
	out := make([]FieldError, len(r.errors))
	copy(out, r.errors)
	return out
}

// JoinedMessages returns all failure messages joined with ", ",
// for single-line error reporting.
func (r *ValidationResult) JoinedMessages() string {
	msgs := make([]string, len(r.errors))
	for i, e := range r.errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, ", ")
}
