// Package outbox models email deliveries that failed once and are retried
// in the background.
package outbox

import (
	"errors"
	"time"
)

// Delivery statuses.
const (
	StatusPending  = "pending"
	StatusRetrying = "retrying"
	StatusSent     = "sent"
	StatusFailed   = "failed"
)

// KindThresholdDigest marks a below-threshold digest email.
const KindThresholdDigest = "threshold_digest"

// DefaultMaxAttempts bounds retries when an entry does not set its own limit.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyID      = errors.New("outbox entry id is required")
	ErrEmptyKind    = errors.New("outbox entry kind is required")
	ErrEmptyPayload = errors.New("outbox entry payload is required")
	ErrNoCreatedAt  = errors.New("outbox entry created_at must be set")
)

// Entry is one queued delivery. Payload is the JSON message to resend.
type Entry struct {
	ID              string
	Kind            string
	Payload         string
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	MessageID       string // provider id once sent
	LastError       string
}

// NewEntry returns a pending entry for payload.
func NewEntry(id, kind, payload string, now time.Time) Entry {
	return Entry{
		ID:          id,
		Kind:        kind,
		Payload:     payload,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
	}
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise; a zero MaxAttempts becomes DefaultMaxAttempts
func (e *Entry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Kind == "" {
		return ErrEmptyKind
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return ErrNoCreatedAt
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// IsTerminal reports whether the entry will never be attempted again.
func (e Entry) IsTerminal() bool {
	return e.Status == StatusSent || e.Status == StatusFailed
}

// NextRetryDelay is the wait after the latest attempt: baseDelay after the
// first, doubling for each later one, capped at maxDelay.
func (e Entry) NextRetryDelay(baseDelay, maxDelay time.Duration) time.Duration {
	retries := max(e.Attempts-1, 0)
	if retries >= 30 {
		return maxDelay
	}
	delay := baseDelay * (1 << retries)
	if delay > maxDelay || delay <= 0 {
		return maxDelay
	}
	return delay
}

// Due reports whether the entry may be attempted at now.
// INVARIANT: terminal entries are never due
func (e Entry) Due(now time.Time, baseDelay, maxDelay time.Duration) bool {
	if e.IsTerminal() {
		return false
	}
	if e.LastAttemptedAt.IsZero() {
		return true
	}
	return !now.Before(e.LastAttemptedAt.Add(e.NextRetryDelay(baseDelay, maxDelay)))
}

// MarkAttempt records the start of an attempt.
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSent records a successful delivery.
func (e *Entry) MarkSent(messageID string) {
	e.Status = StatusSent
	e.MessageID = messageID
	e.LastError = ""
}

// MarkFailed records a failed attempt. The entry stays retrying until it
// runs out of attempts.
func (e *Entry) MarkFailed(err error) {
	e.LastError = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	} else {
		e.Status = StatusRetrying
	}
}
