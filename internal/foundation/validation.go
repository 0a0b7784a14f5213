package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pmtrack/internal/foundation/errors"
)

// Validator represents a validation function.
type Validator[T any] func(T) ValidationResult

// ValidationResult contains the result of a validation operation.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError represents a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error implements the error interface.
func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid creates a successful validation result.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid creates a failed validation result with errors.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{
		Valid:  false,
		Errors: errs,
	}
}

// NewFieldError creates a field-level validation error.
func NewFieldError(field, code, message string) FieldError {
	return FieldError{
		Field:   field,
		Code:    code,
		Message: message,
	}
}

// Combine merges multiple validation results.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return Valid()
	}

	var allErrors []FieldError
	allErrors = append(allErrors, vr.Errors...)
	allErrors = append(allErrors, other.Errors...)

	return Invalid(allErrors...)
}

// ToError converts a validation result to a classified validation error, or
// nil when valid. The first field error supplies the caller-visible message;
// every field error lands in the context for structured logging.
func (vr ValidationResult) ToError() error {
	if vr.Valid {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, fe := range vr.Errors {
		messages = append(messages, fe.Error())
	}

	b := errors.ValidationError(vr.Errors[0].Message)
	if vr.Errors[0].Field != "" {
		b = b.WithContext("field", vr.Errors[0].Field)
	}
	if len(messages) > 1 {
		b = b.WithContext("all_errors", strings.Join(messages, "; "))
	}
	return b.Build()
}

// Required validates that a trimmed string is non-empty.
func Required(field, value string) ValidationResult {
	if strings.TrimSpace(value) == "" {
		return Invalid(NewFieldError(field, "required", field+" is required"))
	}
	return Valid()
}

// IntRange validates that value lies within [min, max] inclusive.
func IntRange(field string, value, min, max int) ValidationResult {
	if value < min || value > max {
		return Invalid(NewFieldError(field, "range",
			fmt.Sprintf("%s must be between %d and %d", field, min, max)))
	}
	return Valid()
}
