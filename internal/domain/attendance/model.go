package attendance

import (
	"errors"
)

// Domain errors
var (
	ErrEmptyMemberID = errors.New("attendance must be associated with a member")
	ErrEmptyEventID  = errors.New("attendance must be associated with an event")
)

// Record marks that a member was present at an event.
// Existence of the (MemberID, EventID) pair means attended; there are no absence records.
// Duplicate pairs carry no extra meaning.
type Record struct {
	MemberID string
	EventID  string
}

// Key identifies the (member, event) pair a record stands for.
type Key struct {
	MemberID string
	EventID  string
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID and EventID must not be empty
func (r *Record) Validate() error {
	if r.MemberID == "" {
		return ErrEmptyMemberID
	}
	if r.EventID == "" {
		return ErrEmptyEventID
	}
	return nil
}

// Key returns the pair identity of the record.
func (r Record) Key() Key {
	return Key{MemberID: r.MemberID, EventID: r.EventID}
}

// Dedupe returns records with duplicate pairs removed, keeping first occurrence order.
// PRE: none
// POST: len(result) <= len(records); every pair appears once
func Dedupe(records []Record) []Record {
	seen := make(map[Key]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
