package metric

import (
	"fmt"
)

// FaultType categorizes why a source failed to produce a usable value
type FaultType string

const (
	// FaultNetwork indicates a network-level error (connection refused, DNS, etc.)
	FaultNetwork FaultType = "network"
	// FaultRateLimit indicates the provider rejected the request due to rate limiting (HTTP 429)
	FaultRateLimit FaultType = "rate_limit"
	// FaultServer indicates a provider-side error (HTTP 5xx)
	FaultServer FaultType = "server"
	// FaultClient indicates a request error (HTTP 4xx except 429)
	FaultClient FaultType = "client"
	// FaultValidation indicates a response was received but its payload was unusable
	FaultValidation FaultType = "validation"
	// FaultTimeout indicates the request exceeded its time budget
	FaultTimeout FaultType = "timeout"
	// FaultUnknown indicates a fault of unknown type
	FaultUnknown FaultType = "unknown"
)

// SourceError is a structured fault from one source in a fallback chain.
// Transient faults (timeouts, 5xx, malformed bodies) are recovered by
// moving to the next source; they are never surfaced to the engine's
// caller on their own.
type SourceError struct {
	Type       FaultType
	Transient  bool
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s fault (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s fault: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a network fault
func NewNetworkError(cause error) *SourceError {
	return &SourceError{
		Type:      FaultNetwork,
		Transient: true,
		Message:   "network request failed",
		Cause:     cause,
	}
}

// NewValidationError creates a fault for a response whose payload could not be used
func NewValidationError(message string) *SourceError {
	return &SourceError{
		Type:      FaultValidation,
		Transient: true,
		Message:   message,
	}
}

// NewTimeoutError creates a timeout fault
func NewTimeoutError(cause error) *SourceError {
	return &SourceError{
		Type:      FaultTimeout,
		Transient: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// ClassifyHTTPStatus maps an HTTP status code onto the fault taxonomy
func ClassifyHTTPStatus(statusCode int) *SourceError {
	switch {
	case statusCode == 429:
		return &SourceError{
			Type:       FaultRateLimit,
			Transient:  true,
			StatusCode: statusCode,
			Message:    "rate limit exceeded",
		}
	case statusCode >= 500:
		return &SourceError{
			Type:       FaultServer,
			Transient:  true,
			StatusCode: statusCode,
			Message:    "provider returned an error",
		}
	case statusCode >= 400:
		return &SourceError{
			Type:       FaultClient,
			Transient:  false,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("client error: HTTP %d", statusCode),
		}
	default:
		return &SourceError{
			Type:       FaultUnknown,
			Transient:  false,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}
