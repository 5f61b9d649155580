package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrClubNotFound     = errors.New("club not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrScopeImmutable   = errors.New("entry level cannot change after creation")
	ErrScopeMismatch    = errors.New("target does not belong to this club")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrSummaryStale     = errors.New("summary is stale")

	// ErrNegativeAmount wraps ErrInvalidAmount so existing errors.Is checks
	// keep matching while validators can word the message for negatives.
	ErrNegativeAmount = fmt.Errorf("amount cannot be negative: %w", ErrInvalidAmount)
)

// FieldViolation is one validation rule hit on one field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rule violation found on a candidate entry so
// callers can show all problems at once instead of one per round trip.
type ValidationError struct {
	Fields []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a violation and returns the receiver for chaining inside
// validators.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldViolation{Field: field, Message: message})
	return e
}

func (e *ValidationError) HasViolations() bool {
	return len(e.Fields) > 0
}

// StaleSummaryError reports that an entry mutation was persisted but the
// derived-summary refresh exhausted its retries. The write stands; the
// summary row is flagged so readers can tell it is out of date.
type StaleSummaryError struct {
	Level Level
	Err   error
}

func (e *StaleSummaryError) Error() string {
	return fmt.Sprintf("summary stale at %s level: %v", e.Level, e.Err)
}

func (e *StaleSummaryError) Unwrap() error { return ErrSummaryStale }
