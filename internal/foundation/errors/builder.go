package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
// This makes error creation consistent and discoverable throughout the codebase.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError, // Default severity
		retry:    RetryNever,    // Default to no retry
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		cause:    err,
		context:  make(ErrorContext),
	}
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithRetry sets the retry strategy.
func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.retry = strategy
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Retryable sets the retry strategy to backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	return b.WithRetry(RetryBackoff)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		retry:    b.retry,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for common error patterns

// ValidationError creates a field-level validation error. These are surfaced
// to the caller and never logged as system faults.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Warning()
}

// NotFoundError creates an error for a missing referenced entity.
func NotFoundError(message string) *ErrorBuilder {
	return NewError(CategoryNotFound, message).Warning()
}

// AlreadyExistsError creates an error for duplicate unique names.
func AlreadyExistsError(message string) *ErrorBuilder {
	return NewError(CategoryAlreadyExists, message).Warning()
}

// RecurrenceError creates an error for a malformed recurrence rule detected
// at evaluation time (the defensive check, not primary validation).
func RecurrenceError(message string) *ErrorBuilder {
	return NewError(CategoryRecurrence, message)
}

// StorageError creates a persistence-layer error.
func StorageError(message string) *ErrorBuilder {
	return NewError(CategoryStorage, message)
}

// ConflictError creates an error for a detected concurrent-update race.
func ConflictError(message string) *ErrorBuilder {
	return NewError(CategoryConflict, message)
}

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// InternalError creates an unexpected internal error. Logged with full
// context; callers receive a generic message.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message)
}
