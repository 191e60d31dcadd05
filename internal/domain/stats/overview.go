package stats

// Overview is the roster-wide roll-up of member stats against a threshold.
type Overview struct {
	AverageAttendanceRate float64
	MembersBelowThreshold int
	PercentBelowThreshold float64
	TotalMembers          int
	TotalEvents           int
	SelectedEventCount    int
	Threshold             float64
}

// ComputeOverview rolls member stats up into roster statistics.
// A member exactly at threshold is not below it. Every ratio is 0 when its
// denominator is 0.
func ComputeOverview(memberStats []MemberAttendanceStat, threshold float64, totalMembers, totalEvents, selectedEventCount int) Overview {
	var sum float64
	below := 0
	for _, s := range memberStats {
		sum += s.AttendanceRate
		if s.AttendanceRate < threshold {
			below++
		}
	}

	o := Overview{
		MembersBelowThreshold: below,
		TotalMembers:          totalMembers,
		TotalEvents:           totalEvents,
		SelectedEventCount:    selectedEventCount,
		Threshold:             threshold,
	}
	if totalMembers > 0 {
		o.AverageAttendanceRate = sum / float64(totalMembers)
		o.PercentBelowThreshold = float64(below) / float64(totalMembers) * 100
	}
	return o
}
