package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter handles error presentation and status code determination
// for the JSON API. All errors are rendered into the uniform response
// envelope {status, status_code, message, data}.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter creates a new HTTP error adapter with an optional slog logger.
// If logger is nil, the default package logger will be used.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// envelope mirrors responses.Envelope without importing it (avoids a cycle:
// the responses package depends on this one for status mapping).
type envelope struct {
	Status     bool   `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// StatusCodeFor determines the HTTP status code for a given error based on
// its classification. Unknown errors map to 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if c, ok := AsClassified(err); ok {
		switch c.Category() {
		case CategoryValidation, CategoryConfig, CategoryAlreadyExists, CategoryRecurrence:
			return http.StatusBadRequest
		case CategoryNotFound:
			return http.StatusNotFound
		case CategoryConflict:
			return http.StatusConflict
		case CategoryStorage, CategoryNotify, CategoryInternal:
			return http.StatusInternalServerError
		case CategoryRuntime:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}

	// Fallback
	return http.StatusInternalServerError
}

// MessageFor returns the caller-visible message for an error. Internal
// failures are masked with a generic message; classified caller-facing
// categories surface their field-level message verbatim.
func (a *HTTPErrorAdapter) MessageFor(err error) string {
	if c, ok := AsClassified(err); ok {
		switch c.Category() {
		case CategoryValidation, CategoryConfig, CategoryNotFound,
			CategoryAlreadyExists, CategoryConflict, CategoryRecurrence:
			return c.Message()
		}
	}
	return "something went wrong"
}

// WriteErrorResponse writes the envelope-shaped JSON error response and logs
// with a level matching the error's severity. Caller-facing validation
// errors are not logged as system faults.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	status := a.StatusCodeFor(err)
	payload := envelope{
		Status:     false,
		StatusCode: status,
		Message:    a.MessageFor(err),
		Data:       []any{},
	}

	b, jerr := json.Marshal(payload)
	if jerr != nil {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"status":false,"status_code":500,"message":"internal error","data":[]}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)

	if c, ok := AsClassified(err); ok {
		a.logger.Log(r.Context(), a.slogLevelFromSeverity(c.Severity()), c.Error())
		return
	}
	// Unknown error: full detail stays in the log, not the response.
	a.logger.Error(err.Error())
}

// Helper: map severities.
func (a *HTTPErrorAdapter) slogLevelFromSeverity(s ErrorSeverity) slog.Level {
	switch s {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError, SeverityFatal:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
