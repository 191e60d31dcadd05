package stats

import (
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
	"rollcall/internal/domain/selection"
)

// Snapshot is the immutable input of one computation.
type Snapshot struct {
	Members   []member.Member
	Events    []event.Event
	Records   []attendance.Record
	Selection selection.Set
}

// Report is the full output of one computation.
type Report struct {
	Scope    Scope
	Stats    []MemberAttendanceStat
	Overview Overview
}

// Compute runs the whole pipeline over snap: scope, join, rates, roll-up.
func Compute(snap Snapshot, threshold float64) Report {
	scope := ResolveScope(snap.Events, snap.Selection)
	memberStats := computeForScope(snap.Members, NewIndex(snap.Records), scope)
	return Report{
		Scope:    scope,
		Stats:    memberStats,
		Overview: ComputeOverview(memberStats, threshold, len(snap.Members), len(snap.Events), scope.SelectedCount),
	}
}
