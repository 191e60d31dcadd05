package stats

import (
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
	"rollcall/internal/domain/selection"
)

// MemberAttendanceStat is one member's attendance over the in-scope events.
type MemberAttendanceStat struct {
	Member         member.Member
	AttendanceRate float64 // 0-100, unrounded
	AttendedEvents []event.Event
	MissedEvents   []event.Event
	TotalEvents    int
	EventsAttended int
}

// Rate returns attended/total as a percentage, or 0 when total is 0.
func Rate(attended, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(attended) / float64(total) * 100
}

// ComputeAttendanceStats computes one stat per member, in member input order.
// An empty selected list puts every event in scope.
func ComputeAttendanceStats(members []member.Member, events []event.Event, records []attendance.Record, selected []string) []MemberAttendanceStat {
	scope := ResolveScope(events, selection.New(selected...))
	return computeForScope(members, NewIndex(records), scope)
}

func computeForScope(members []member.Member, idx Index, scope Scope) []MemberAttendanceStat {
	total := scope.Len()
	out := make([]MemberAttendanceStat, 0, len(members))
	for _, m := range members {
		p := Join(idx, m.ID, scope)
		out = append(out, MemberAttendanceStat{
			Member:         m,
			AttendanceRate: Rate(len(p.Attended), total),
			AttendedEvents: p.Attended,
			MissedEvents:   p.Missed,
			TotalEvents:    total,
			EventsAttended: len(p.Attended),
		})
	}
	return out
}
