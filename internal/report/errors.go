package report

import (
	"errors"
	"fmt"
)

// Machine-readable rejection reasons surfaced to callers.
const (
	ReasonBadDateFormat   = "invalid_date_format"
	ReasonBadCalendarDate = "invalid_calendar_date"
	ReasonYearOutOfRange  = "year_out_of_range"
	ReasonForbidden       = "forbidden"
)

// ValidationError rejects a request before any data access happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// AuthorizationError rejects a request that failed the capability gate or the
// anti-forgery check. The transport layer must not tell the two apart in its
// response body.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "authorization failed: " + e.Reason
}

// ProviderError marks a partial upstream failure. The aggregator recovers from
// these by skipping the affected event or order, never by aborting.
type ProviderError struct {
	Provider string
	EventID  string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failed for event %s: %v", e.Provider, e.EventID, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// CacheStoreError marks an unavailable cache store. Callers treat it as an
// unconditional miss and compute directly.
type CacheStoreError struct {
	Op  string
	Err error
}

func (e *CacheStoreError) Error() string {
	return fmt.Sprintf("cache store %s failed: %v", e.Op, e.Err)
}

func (e *CacheStoreError) Unwrap() error {
	return e.Err
}

// LogSinkError marks a failed audit write. Recorders swallow it after logging;
// it must never reach a response.
type LogSinkError struct {
	Err error
}

func (e *LogSinkError) Error() string {
	return fmt.Sprintf("audit sink write failed: %v", e.Err)
}

func (e *LogSinkError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuthorizationError(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// RejectionReason extracts the machine-readable reason from a validation or
// authorization error, or returns an empty string for other errors.
func RejectionReason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	var ae *AuthorizationError
	if errors.As(err, &ae) {
		return ReasonForbidden
	}
	return ""
}
