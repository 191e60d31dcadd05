package event

import (
	"errors"
	"time"
)

// Max length constants.
const (
	MaxTitleLength = 200
)

// Domain errors
var (
	ErrEmptyID      = errors.New("event id cannot be empty")
	ErrEmptyTitle   = errors.New("event title cannot be empty")
	ErrTitleTooLong = errors.New("event title cannot exceed 200 characters")
	ErrMissingTime  = errors.New("event timestamp is required")
)

// Event is a club meeting or activity attendance is taken for.
// PRE: ID and Title are non-empty. Timestamp is set.
type Event struct {
	ID        string
	Title     string
	Timestamp time.Time
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Title == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if e.Timestamp.IsZero() {
		return ErrMissingTime
	}
	return nil
}

// IDs returns the identifiers of events in input order.
func IDs(events []Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
