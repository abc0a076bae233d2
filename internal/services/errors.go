package services

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy for the suggestion core. Validation and consent errors are
// surfaced to the caller; upstream generation failures are converted into
// fallback responses before they ever reach a handler; telemetry write
// failures are logged and swallowed.

const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeConsentRequired   = "CONSENT_REQUIRED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", CodeValidationError, e.Field, e.Reason)
}

type ConsentRequiredError struct {
	// FallbackAvailable tells the caller that canned content remains
	// reachable through the generation path even though live suggestions
	// are blocked.
	FallbackAvailable bool
}

func (e *ConsentRequiredError) Error() string {
	return CodeConsentRequired
}

type RateLimitError struct {
	CurrentUsage int
	DailyLimit   int
	ResetsAt     time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: %d/%d until %s", CodeRateLimitExceeded, e.CurrentUsage, e.DailyLimit, e.ResetsAt.Format(time.RFC3339))
}

var (
	ErrUpstreamTimeout = errors.New("generation upstream timeout")
	ErrUpstreamError   = errors.New("generation upstream error")
)
