package web

import (
	"time"

	"rollcall/internal/application/listutil"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/export"
	"rollcall/internal/domain/outbox"
	"rollcall/internal/domain/stats"
)

type scopeView struct {
	Description        string   `json:"description"`
	Explicit           bool     `json:"explicit"`
	SelectedEventCount int      `json:"selected_event_count"`
	EventIDs           []string `json:"event_ids"`
}

func newScopeView(s stats.Scope) scopeView {
	return scopeView{
		Description:        s.Describe(),
		Explicit:           s.Explicit,
		SelectedEventCount: s.SelectedCount,
		EventIDs:           event.IDs(s.Events),
	}
}

type overviewView struct {
	AverageAttendanceRate float64 `json:"average_attendance_rate"`
	AverageDisplay        string  `json:"average_attendance_rate_display"`
	MembersBelowThreshold int     `json:"members_below_threshold"`
	PercentBelowThreshold float64 `json:"percent_below_threshold"`
	TotalMembers          int     `json:"total_members"`
	TotalEvents           int     `json:"total_events"`
	SelectedEventCount    int     `json:"selected_event_count"`
	Threshold             float64 `json:"threshold"`
}

func newOverviewView(o stats.Overview) overviewView {
	return overviewView{
		AverageAttendanceRate: o.AverageAttendanceRate,
		AverageDisplay:        export.FormatRate(o.AverageAttendanceRate),
		MembersBelowThreshold: o.MembersBelowThreshold,
		PercentBelowThreshold: o.PercentBelowThreshold,
		TotalMembers:          o.TotalMembers,
		TotalEvents:           o.TotalEvents,
		SelectedEventCount:    o.SelectedEventCount,
		Threshold:             o.Threshold,
	}
}

type eventView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

func newEventView(e event.Event) eventView {
	return eventView{ID: e.ID, Title: e.Title, Timestamp: e.Timestamp}
}

func newEventViews(events []event.Event) []eventView {
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, newEventView(e))
	}
	return out
}

type memberStatView struct {
	MemberID       string   `json:"member_id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	AttendanceRate float64  `json:"attendance_rate"`
	RateDisplay    string   `json:"attendance_rate_display"`
	EventsAttended int      `json:"events_attended"`
	TotalEvents    int      `json:"total_events"`
	MissedEventIDs []string `json:"missed_event_ids"`
}

func newMemberStatView(s stats.MemberAttendanceStat) memberStatView {
	return memberStatView{
		MemberID:       s.Member.ID,
		Name:           s.Member.DisplayName(),
		Email:          s.Member.Email,
		AttendanceRate: s.AttendanceRate,
		RateDisplay:    export.FormatRate(s.AttendanceRate),
		EventsAttended: s.EventsAttended,
		TotalEvents:    s.TotalEvents,
		MissedEventIDs: event.IDs(s.MissedEvents),
	}
}

type statsResponse struct {
	Scope    scopeView         `json:"scope"`
	Overview overviewView      `json:"overview"`
	Members  []memberStatView  `json:"members"`
	Page     listutil.PageInfo `json:"page"`
	Sort     string            `json:"sort,omitempty"`
	Dir      string            `json:"dir"`
}

type alertView struct {
	Member          memberStatView `json:"member"`
	MissedPreview   []eventView    `json:"missed_preview"`
	RemainingMissed int            `json:"remaining_missed"`
}

type alertsResponse struct {
	Scope            scopeView   `json:"scope"`
	Threshold        float64     `json:"threshold"`
	TotalFlagged     int         `json:"total_flagged"`
	Alerts           []alertView `json:"alerts"`
	RemainingFlagged int         `json:"remaining_flagged"`
}

type eventSummaryView struct {
	Event          eventView `json:"event"`
	Attendees      int       `json:"attendees"`
	AttendanceRate float64   `json:"attendance_rate"`
	RateDisplay    string    `json:"attendance_rate_display"`
	Records        int       `json:"records"`
}

type selectionView struct {
	ID        string   `json:"id"`
	EventIDs  []string `json:"event_ids"`
	AllEvents bool     `json:"all_events"`
}

type deliveryView struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"max_attempts"`
	CreatedAt       time.Time  `json:"created_at"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

func newDeliveryViews(entries []outbox.Entry) []deliveryView {
	out := make([]deliveryView, 0, len(entries))
	for _, e := range entries {
		v := deliveryView{
			ID:          e.ID,
			Kind:        e.Kind,
			Status:      e.Status,
			Attempts:    e.Attempts,
			MaxAttempts: e.MaxAttempts,
			CreatedAt:   e.CreatedAt,
			LastError:   e.LastError,
		}
		if !e.LastAttemptedAt.IsZero() {
			at := e.LastAttemptedAt
			v.LastAttemptedAt = &at
		}
		out = append(out, v)
	}
	return out
}
