package stats

import (
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
	"rollcall/internal/domain/selection"
)

// EventSummary is the attendance of one in-scope event across the roster.
type EventSummary struct {
	Event          event.Event
	Attendees      int     // distinct roster members with a record
	AttendanceRate float64 // Attendees / roster size, 0-100
	Records        int     // stored records for the event, roster or not
}

// ComputeEventSummaries counts roster attendance per in-scope event, in scope order.
// Records for members outside the roster are not counted.
func ComputeEventSummaries(members []member.Member, events []event.Event, records []attendance.Record, sel selection.Set) []EventSummary {
	scope := ResolveScope(events, sel)
	idx := NewIndex(records)
	out := make([]EventSummary, 0, scope.Len())
	for _, e := range scope.Events {
		n := 0
		for _, m := range members {
			if idx.Attended(m.ID, e.ID) {
				n++
			}
		}
		out = append(out, EventSummary{
			Event:          e,
			Attendees:      n,
			AttendanceRate: Rate(n, len(members)),
		})
	}
	return out
}

// WithRecordCounts fills Records from a precomputed per-event count.
// Events missing from counts keep 0.
// POST: summaries is modified in place and returned
func WithRecordCounts(summaries []EventSummary, counts map[string]int) []EventSummary {
	for i := range summaries {
		summaries[i].Records = counts[summaries[i].Event.ID]
	}
	return summaries
}
