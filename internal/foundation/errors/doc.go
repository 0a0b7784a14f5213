// Package errors provides foundational, type-safe error primitives used across pmtrack.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (validation, not_found, storage, etc.)
//   - ErrorSeverity: Impact level (error, warning, info)
//   - RetryStrategy: Retry behavior (should-retry, no-retry, backoff)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP adapter for error presentation in the uniform response envelope
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryRecurrence, "weekly rule missing day").
//		WithSeverity(errors.SeverityWarning).
//		WithContext("task_id", taskID).
//		Build()
package errors
