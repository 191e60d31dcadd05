package stats

import (
	"rollcall/internal/domain/event"
)

// BelowThreshold returns the stats whose rate is strictly below threshold, in input order.
func BelowThreshold(memberStats []MemberAttendanceStat, threshold float64) []MemberAttendanceStat {
	out := make([]MemberAttendanceStat, 0)
	for _, s := range memberStats {
		if s.AttendanceRate < threshold {
			out = append(out, s)
		}
	}
	return out
}

// Alert is a below-threshold member with a bounded preview of missed events.
type Alert struct {
	Stat            MemberAttendanceStat
	MissedPreview   []event.Event
	RemainingMissed int // len(Stat.MissedEvents) - len(MissedPreview)
}

// Alerts filters to members below threshold and attaches missed-event previews.
// limit bounds how many alerts are returned by input order, not by rate; limit <= 0
// returns all. previewSize bounds each missed-event preview; negative means 0.
func Alerts(memberStats []MemberAttendanceStat, threshold float64, limit, previewSize int) []Alert {
	if previewSize < 0 {
		previewSize = 0
	}
	below := BelowThreshold(memberStats, threshold)
	if limit > 0 && len(below) > limit {
		below = below[:limit]
	}

	out := make([]Alert, 0, len(below))
	for _, s := range below {
		n := min(previewSize, len(s.MissedEvents))
		out = append(out, Alert{
			Stat:            s,
			MissedPreview:   s.MissedEvents[:n:n],
			RemainingMissed: len(s.MissedEvents) - n,
		})
	}
	return out
}
