package stats

import (
	"rollcall/internal/domain/event"
)

// Partition is one member's split of the in-scope events.
type Partition struct {
	Attended []event.Event
	Missed   []event.Event
}

// Join partitions the scope's events into attended and missed for memberID.
// Both lists follow scope order.
// POST: len(Attended) + len(Missed) == scope.Len()
func Join(idx Index, memberID string, scope Scope) Partition {
	p := Partition{
		Attended: make([]event.Event, 0),
		Missed:   make([]event.Event, 0),
	}
	for _, e := range scope.Events {
		if idx.Attended(memberID, e.ID) {
			p.Attended = append(p.Attended, e)
		} else {
			p.Missed = append(p.Missed, e)
		}
	}
	return p
}
