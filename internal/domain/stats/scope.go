// Package stats computes per-member attendance rates and roster roll-ups.
//
// Everything here is a pure function of its inputs: a snapshot of members, events,
// attendance records and an event selection goes in, a fresh result comes out.
// Nothing is cached between calls, so identical inputs always give identical output.
package stats

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rollcall/internal/domain/event"
	"rollcall/internal/domain/selection"
)

const selectedEventsKey = "based on %d selected events"

func init() {
	err := message.Set(language.English, selectedEventsKey,
		plural.Selectf(1, "%d",
			"=1", "based on 1 selected event",
			"other", "based on %d selected events",
		))
	if err != nil {
		panic(err)
	}
}

// Scope is the resolved set of in-scope events used as every member's denominator.
type Scope struct {
	Events        []event.Event // in-scope events in input order
	Explicit      bool          // true when derived from a non-empty selection
	SelectedCount int           // events reported as selected; all events when not explicit
}

// ResolveScope applies the empty-selection-means-all rule.
// An empty selection yields every known event. A non-empty selection yields the known
// events it names; identifiers that match no event are ignored.
// PRE: events have unique IDs
// POST: Scope.Events preserves the order of events; duplicates by ID are dropped
func ResolveScope(events []event.Event, sel selection.Set) Scope {
	explicit := !sel.IsEmpty()
	seen := make(map[string]struct{}, len(events))
	in := make([]event.Event, 0, len(events))
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		if explicit && !sel.Contains(e.ID) {
			continue
		}
		in = append(in, e)
	}
	return Scope{
		Events:        in,
		Explicit:      explicit,
		SelectedCount: len(in),
	}
}

// Len returns the number of in-scope events.
func (s Scope) Len() int {
	return len(s.Events)
}

// Describe returns the basis text shown beside rates,
// "based on all events" or "based on N selected events", singular for one.
func (s Scope) Describe() string {
	if !s.Explicit {
		return "based on all events"
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf(selectedEventsKey, s.SelectedCount)
}
