package stats

import (
	"rollcall/internal/domain/attendance"
)

// Index answers "did member M attend event E" in constant time.
// Duplicate records for one pair collapse into a single entry.
type Index struct {
	byMember map[string]map[string]struct{}
}

// NewIndex builds an Index from raw attendance records.
// Records with a blank member or event id are skipped. Records naming unknown members or
// events are kept but can never match an in-scope pair.
func NewIndex(records []attendance.Record) Index {
	idx := Index{byMember: make(map[string]map[string]struct{})}
	for _, r := range records {
		if r.Validate() != nil {
			continue
		}
		events, ok := idx.byMember[r.MemberID]
		if !ok {
			events = make(map[string]struct{})
			idx.byMember[r.MemberID] = events
		}
		events[r.EventID] = struct{}{}
	}
	return idx
}

// Attended reports whether any record exists for the pair.
func (idx Index) Attended(memberID, eventID string) bool {
	_, ok := idx.byMember[memberID][eventID]
	return ok
}
