// Package selection holds the set of event identifiers an administrator has put in scope.
//
// An empty Set is not "nothing selected": it means no explicit selection was made and
// every known event is in scope. Stats code resolves that rule once, in stats.ResolveScope.
package selection

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Set is an unordered set of event identifiers with value semantics:
// mutating one copy never changes another, whether it came from New or the
// zero value. The zero value is an empty set ready to use.
type Set struct {
	ids mapset.Set[string]
}

// New creates a Set holding the given identifiers. Blank identifiers are skipped.
func New(ids ...string) Set {
	s := Set{ids: mapset.NewThreadUnsafeSet[string]()}
	for _, id := range ids {
		if id != "" {
			s.ids.Add(id)
		}
	}
	return s
}

// Toggle removes eventID if present, otherwise adds it.
// PRE: eventID is non-empty
// POST: membership of eventID is flipped; becoming empty means "no explicit selection"
func (s *Set) Toggle(eventID string) {
	if eventID == "" {
		return
	}
	next := s.Clone()
	if next.ids.Contains(eventID) {
		next.ids.Remove(eventID)
	} else {
		next.ids.Add(eventID)
	}
	*s = next
}

// SelectAll replaces the set with the given identifiers.
// POST: Set contains exactly the non-blank ids given
func (s *Set) SelectAll(eventIDs []string) {
	*s = New(eventIDs...)
}

// Clear empties the set.
// POST: IsEmpty() is true
func (s *Set) Clear() {
	*s = Set{}
}

// Contains reports whether eventID is selected.
func (s Set) Contains(eventID string) bool {
	return s.ids != nil && s.ids.Contains(eventID)
}

// Len returns the number of selected identifiers.
func (s Set) Len() int {
	if s.ids == nil {
		return 0
	}
	return s.ids.Cardinality()
}

// IsEmpty reports whether no explicit selection has been made.
func (s Set) IsEmpty() bool {
	return s.Len() == 0
}

// IDs returns the selected identifiers sorted ascending.
func (s Set) IDs() []string {
	if s.ids == nil {
		return []string{}
	}
	ids := s.ids.ToSlice()
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	if s.ids == nil {
		return New()
	}
	return Set{ids: s.ids.Clone()}
}
