// Package errors provides the pipeline's error taxonomy.
//
// Degraded codes are caught at a component boundary, logged, and converted to
// empty or neutral data. Fatal codes end the run with a non-zero exit.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Degraded: the run continues with empty data.
	ErrCodeHistorySaveFailed  ErrorCode = "HISTORY_SAVE_FAILED"
	ErrCodeHistoryQueryFailed ErrorCode = "HISTORY_QUERY_FAILED"
	ErrCodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
	ErrCodeToolFetchFailed    ErrorCode = "TOOL_FETCH_FAILED"
	ErrCodeWeatherFetchFailed ErrorCode = "WEATHER_FETCH_FAILED"

	// Fatal: propagated to process exit.
	ErrCodeGeneratorExhausted ErrorCode = "GENERATOR_EXHAUSTED"
	ErrCodeLLMRequestFailed   ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeDeliveryFailed     ErrorCode = "DELIVERY_FAILED"
	ErrCodeConfigInvalid      ErrorCode = "CONFIG_INVALID"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the cause so errors.Is reaches sentinel errors.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Fields returns the error as logger fields.
func (e *StandardError) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"errorCode":     string(e.Code),
		"message":       e.Message,
		"errorCategory": GetErrorCategory(e.Code),
		"fatal":         IsFatal(e.Code),
	}
	if e.Details != "" {
		fields["details"] = e.Details
	}
	for k, v := range e.Metadata {
		fields[k] = v
	}
	return fields
}

func newError(code ErrorCode, message string, cause error) *StandardError {
	stdErr := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		stdErr.Details = cause.Error()
	}
	return stdErr
}

// ==========================
// 2. Error Constructors
// ==========================

// NewHistorySaveFailedError wraps a document store write failure.
func NewHistorySaveFailedError(backend string, err error) *StandardError {
	e := newError(ErrCodeHistorySaveFailed, "Failed to save recommendation history", err)
	e.Retryable = true
	e.Metadata = map[string]interface{}{"backend": backend}
	return e
}

// NewHistoryQueryFailedError wraps a document store read failure.
func NewHistoryQueryFailedError(backend string, days int, err error) *StandardError {
	e := newError(ErrCodeHistoryQueryFailed, "Failed to query recommendation history", err)
	e.Retryable = true
	e.Metadata = map[string]interface{}{"backend": backend, "days": days}
	return e
}

// NewExtractionFailedError covers model errors and invalid extractor payloads.
func NewExtractionFailedError(err error) *StandardError {
	return newError(ErrCodeExtractionFailed, "Venue extraction failed", err)
}

func NewToolFetchFailedError(tool string, err error) *StandardError {
	e := newError(ErrCodeToolFetchFailed, fmt.Sprintf("Fetch tool '%s' failed", tool), err)
	e.Retryable = true
	e.Metadata = map[string]interface{}{"tool": tool}
	return e
}

func NewWeatherFetchFailedError(location string, err error) *StandardError {
	e := newError(ErrCodeWeatherFetchFailed, "Weather forecast unavailable", err)
	e.Retryable = true
	e.Metadata = map[string]interface{}{"location": location}
	return e
}

// NewGeneratorExhaustedError reports a tool loop that hit its bound without a final answer.
func NewGeneratorExhaustedError(cause error, rounds, steps int) *StandardError {
	e := newError(ErrCodeGeneratorExhausted, "Recommendation generator exhausted its iteration bound", cause)
	e.Metadata = map[string]interface{}{"rounds": rounds, "steps": steps}
	return e
}

func NewLLMRequestFailedError(purpose string, err error) *StandardError {
	e := newError(ErrCodeLLMRequestFailed, fmt.Sprintf("Model request for %s failed", purpose), err)
	e.Metadata = map[string]interface{}{"purpose": purpose}
	return e
}

func NewDeliveryFailedError(channel string, err error) *StandardError {
	e := newError(ErrCodeDeliveryFailed, fmt.Sprintf("Delivery via %s failed", channel), err)
	e.Metadata = map[string]interface{}{"channel": channel}
	return e
}

func NewConfigInvalidError(err error) *StandardError {
	return newError(ErrCodeConfigInvalid, "Configuration is invalid", err)
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err)
}

// ==========================
// 3. Utility Functions
// ==========================

// IsFatal reports whether a code ends the run.
func IsFatal(code ErrorCode) bool {
	switch code {
	case ErrCodeHistorySaveFailed,
		ErrCodeHistoryQueryFailed,
		ErrCodeExtractionFailed,
		ErrCodeToolFetchFailed,
		ErrCodeWeatherFetchFailed:
		return false
	default:
		return true
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "HISTORY"):
		return "STORAGE"
	case strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "GENERATOR"):
		return "AI"
	case strings.Contains(codeStr, "TOOL") || strings.Contains(codeStr, "WEATHER"):
		return "FETCH"
	case strings.Contains(codeStr, "DELIVERY"):
		return "DELIVERY"
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	default:
		return "OTHER"
	}
}
