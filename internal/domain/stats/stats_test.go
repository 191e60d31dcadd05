package stats

import (
	"reflect"
	"testing"
	"time"

	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
	"rollcall/internal/domain/selection"
)

var (
	e1 = event.Event{ID: "E1", Title: "Kickoff", Timestamp: time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)}
	e2 = event.Event{ID: "E2", Title: "Seminar", Timestamp: time.Date(2026, 1, 17, 18, 0, 0, 0, time.UTC)}
	e3 = event.Event{ID: "E3", Title: "Demo night", Timestamp: time.Date(2026, 1, 24, 18, 0, 0, 0, time.UTC)}

	memberA = member.Member{ID: "A", Name: "Ana", Email: "ana@example.com"}
	memberB = member.Member{ID: "B", Name: "Ben", Email: "ben@example.com"}
)

func eventIDs(events []event.Event) []string {
	return event.IDs(events)
}

// TestComputeAttendanceStats_EmptySelection covers the two-member, two-event scenario.
func TestComputeAttendanceStats_EmptySelection(t *testing.T) {
	records := []attendance.Record{{MemberID: "A", EventID: "E1"}}
	got := ComputeAttendanceStats([]member.Member{memberA, memberB}, []event.Event{e1, e2}, records, nil)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	a, b := got[0], got[1]
	if a.Member.ID != "A" || b.Member.ID != "B" {
		t.Fatalf("member order not preserved: %s, %s", a.Member.ID, b.Member.ID)
	}
	if a.AttendanceRate != 50 || a.EventsAttended != 1 || a.TotalEvents != 2 {
		t.Errorf("A = %+v", a)
	}
	if !reflect.DeepEqual(eventIDs(a.AttendedEvents), []string{"E1"}) || !reflect.DeepEqual(eventIDs(a.MissedEvents), []string{"E2"}) {
		t.Errorf("A attended=%v missed=%v", eventIDs(a.AttendedEvents), eventIDs(a.MissedEvents))
	}
	if b.AttendanceRate != 0 || b.EventsAttended != 0 || len(b.AttendedEvents) != 0 {
		t.Errorf("B = %+v", b)
	}
	if !reflect.DeepEqual(eventIDs(b.MissedEvents), []string{"E1", "E2"}) {
		t.Errorf("B missed=%v", eventIDs(b.MissedEvents))
	}

	o := ComputeOverview(got, 50, 2, 2, 2)
	if o.MembersBelowThreshold != 1 {
		t.Errorf("MembersBelowThreshold = %d, want 1 (A is at threshold)", o.MembersBelowThreshold)
	}
	if o.AverageAttendanceRate != 25 {
		t.Errorf("AverageAttendanceRate = %v, want 25", o.AverageAttendanceRate)
	}
	if o.PercentBelowThreshold != 50 {
		t.Errorf("PercentBelowThreshold = %v, want 50", o.PercentBelowThreshold)
	}
}

// TestComputeAttendanceStats_SingleSelectedEvent narrows scope to E1.
func TestComputeAttendanceStats_SingleSelectedEvent(t *testing.T) {
	records := []attendance.Record{{MemberID: "A", EventID: "E1"}}
	got := ComputeAttendanceStats([]member.Member{memberA, memberB}, []event.Event{e1, e2}, records, []string{"E1"})

	if got[0].AttendanceRate != 100 || got[0].TotalEvents != 1 {
		t.Errorf("A = %+v, want 100%% of 1", got[0])
	}
	if got[1].AttendanceRate != 0 || got[1].TotalEvents != 1 {
		t.Errorf("B = %+v, want 0%% of 1", got[1])
	}
	if o := ComputeOverview(got, 50, 2, 2, 1); o.MembersBelowThreshold != 1 {
		t.Errorf("MembersBelowThreshold = %d, want 1", o.MembersBelowThreshold)
	}
}

// TestComputeAttendanceStats_DuplicateRecords verifies a repeated pair counts once.
func TestComputeAttendanceStats_DuplicateRecords(t *testing.T) {
	records := []attendance.Record{
		{MemberID: "A", EventID: "E1"},
		{MemberID: "A", EventID: "E1"},
	}
	got := ComputeAttendanceStats([]member.Member{memberA}, []event.Event{e1, e2}, records, nil)
	if got[0].EventsAttended != 1 || len(got[0].AttendedEvents) != 1 {
		t.Errorf("EventsAttended = %d, want 1", got[0].EventsAttended)
	}
}

// TestComputeAttendanceStats_UnknownReferences verifies dangling records are ignored.
func TestComputeAttendanceStats_UnknownReferences(t *testing.T) {
	records := []attendance.Record{
		{MemberID: "A", EventID: "E404"},
		{MemberID: "ghost", EventID: "E1"},
		{MemberID: "", EventID: "E1"},
	}
	got := ComputeAttendanceStats([]member.Member{memberA}, []event.Event{e1, e2}, records, nil)
	if got[0].EventsAttended != 0 || got[0].TotalEvents != 2 || got[0].AttendanceRate != 0 {
		t.Errorf("A = %+v, want no attendance", got[0])
	}
}

// TestComputeAttendanceStats_Invariants checks partition and shared denominator.
func TestComputeAttendanceStats_Invariants(t *testing.T) {
	members := []member.Member{memberA, memberB, {ID: "C", Name: "Cy", Email: "cy@example.com"}}
	events := []event.Event{e1, e2, e3}
	records := []attendance.Record{
		{MemberID: "A", EventID: "E1"}, {MemberID: "A", EventID: "E3"},
		{MemberID: "B", EventID: "E2"}, {MemberID: "C", EventID: "E1"},
		{MemberID: "C", EventID: "E2"}, {MemberID: "C", EventID: "E3"},
	}
	for _, sel := range [][]string{nil, {"E1"}, {"E2", "E3"}, {"E1", "E2", "E3"}, {"nope"}} {
		got := ComputeAttendanceStats(members, events, records, sel)
		for _, s := range got {
			if s.EventsAttended+len(s.MissedEvents) != s.TotalEvents {
				t.Errorf("sel=%v member=%s: %d + %d != %d", sel, s.Member.ID, s.EventsAttended, len(s.MissedEvents), s.TotalEvents)
			}
			if s.TotalEvents != got[0].TotalEvents {
				t.Errorf("sel=%v: totals differ across members", sel)
			}
		}
	}
}

// TestComputeAttendanceStats_EmptyEqualsAll verifies empty selection matches selecting every event.
func TestComputeAttendanceStats_EmptyEqualsAll(t *testing.T) {
	members := []member.Member{memberA, memberB}
	events := []event.Event{e1, e2, e3}
	records := []attendance.Record{{MemberID: "A", EventID: "E2"}, {MemberID: "B", EventID: "E3"}}

	empty := ComputeAttendanceStats(members, events, records, nil)
	all := ComputeAttendanceStats(members, events, records, []string{"E3", "E1", "E2"})
	if !reflect.DeepEqual(empty, all) {
		t.Errorf("empty selection differs from full selection:\n%+v\n%+v", empty, all)
	}
}

// TestComputeAttendanceStats_Idempotent verifies repeated calls give identical output.
func TestComputeAttendanceStats_Idempotent(t *testing.T) {
	members := []member.Member{memberA, memberB}
	events := []event.Event{e1, e2, e3}
	records := []attendance.Record{{MemberID: "A", EventID: "E2"}, {MemberID: "B", EventID: "E3"}}

	first := ComputeAttendanceStats(members, events, records, []string{"E2"})
	second := ComputeAttendanceStats(members, events, records, []string{"E2"})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("outputs differ between calls")
	}
}

// TestComputeAttendanceStats_NoEventsInScope verifies the zero-denominator guard.
func TestComputeAttendanceStats_NoEventsInScope(t *testing.T) {
	members := []member.Member{memberA, memberB}
	records := []attendance.Record{{MemberID: "A", EventID: "E1"}}

	for name, events := range map[string][]event.Event{"no events": nil, "unknown selection": {e1}} {
		t.Run(name, func(t *testing.T) {
			sel := []string{}
			if events != nil {
				sel = []string{"missing"}
			}
			got := ComputeAttendanceStats(members, events, records, sel)
			for _, s := range got {
				if s.AttendanceRate != 0 || s.TotalEvents != 0 {
					t.Errorf("member %s = %+v, want zero rate", s.Member.ID, s)
				}
			}
			o := ComputeOverview(got, 50, len(members), len(events), 0)
			if o.AverageAttendanceRate != 0 {
				t.Errorf("AverageAttendanceRate = %v, want 0", o.AverageAttendanceRate)
			}
		})
	}
}

// TestComputeOverview_NoMembers verifies the zero-member guard.
func TestComputeOverview_NoMembers(t *testing.T) {
	o := ComputeOverview(nil, 75, 0, 4, 4)
	if o.AverageAttendanceRate != 0 || o.PercentBelowThreshold != 0 || o.MembersBelowThreshold != 0 {
		t.Errorf("overview = %+v, want zeros", o)
	}
	if o.TotalEvents != 4 || o.SelectedEventCount != 4 {
		t.Errorf("counts not carried through: %+v", o)
	}
}

// TestRate_Monotonic verifies rate never decreases as attendance grows.
func TestRate_Monotonic(t *testing.T) {
	for total := 0; total <= 12; total++ {
		prev := -1.0
		for attended := 0; attended <= total; attended++ {
			r := Rate(attended, total)
			if r < prev {
				t.Fatalf("Rate(%d,%d)=%v < %v", attended, total, r, prev)
			}
			prev = r
		}
	}
	if Rate(3, 0) != 0 {
		t.Errorf("Rate with zero total should be 0")
	}
}

// TestResolveScope covers the selection disambiguation and description text.
func TestResolveScope(t *testing.T) {
	events := []event.Event{e1, e2, e3}

	all := ResolveScope(events, selection.New())
	if all.Explicit || all.Len() != 3 || all.SelectedCount != 3 {
		t.Errorf("empty selection scope = %+v", all)
	}
	if all.Describe() != "based on all events" {
		t.Errorf("Describe() = %q", all.Describe())
	}

	some := ResolveScope(events, selection.New("E3", "E1", "ghost"))
	if !some.Explicit || !reflect.DeepEqual(eventIDs(some.Events), []string{"E1", "E3"}) {
		t.Errorf("explicit scope = %+v", some)
	}
	if some.Describe() != "based on 2 selected events" {
		t.Errorf("Describe() = %q", some.Describe())
	}

	// Unknown identifiers do not count toward the selection size.
	one := ResolveScope(events, selection.New("E1", "ghost"))
	if one.SelectedCount != 1 {
		t.Errorf("SelectedCount = %d, want 1", one.SelectedCount)
	}
	if one.Describe() != "based on 1 selected event" {
		t.Errorf("Describe() = %q", one.Describe())
	}
}

// TestBelowThreshold verifies strict inequality and input order.
func TestBelowThreshold(t *testing.T) {
	in := []MemberAttendanceStat{
		{Member: member.Member{ID: "x"}, AttendanceRate: 10},
		{Member: member.Member{ID: "y"}, AttendanceRate: 50},
		{Member: member.Member{ID: "z"}, AttendanceRate: 49.99},
	}
	got := BelowThreshold(in, 50)
	if len(got) != 2 || got[0].Member.ID != "x" || got[1].Member.ID != "z" {
		t.Errorf("BelowThreshold = %+v", got)
	}
}

// TestAlerts verifies limit, preview bounds and remaining arithmetic.
func TestAlerts(t *testing.T) {
	missed := []event.Event{e1, e2, e3, {ID: "E4"}, {ID: "E5"}}
	in := []MemberAttendanceStat{
		{Member: member.Member{ID: "p"}, AttendanceRate: 0, MissedEvents: missed},
		{Member: member.Member{ID: "q"}, AttendanceRate: 90},
		{Member: member.Member{ID: "r"}, AttendanceRate: 20, MissedEvents: missed[:2]},
		{Member: member.Member{ID: "s"}, AttendanceRate: 30, MissedEvents: missed[:1]},
	}

	got := Alerts(in, 50, 2, 3)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Stat.Member.ID != "p" || len(got[0].MissedPreview) != 3 || got[0].RemainingMissed != 2 {
		t.Errorf("alert[0] = %+v", got[0])
	}
	if got[1].Stat.Member.ID != "r" || len(got[1].MissedPreview) != 2 || got[1].RemainingMissed != 0 {
		t.Errorf("alert[1] = %+v", got[1])
	}

	if all := Alerts(in, 50, 0, -1); len(all) != 3 || all[2].RemainingMissed != 1 || len(all[2].MissedPreview) != 0 {
		t.Errorf("unbounded alerts = %+v", all)
	}
}

// TestComputeEventSummaries counts distinct roster attendees per event.
func TestComputeEventSummaries(t *testing.T) {
	records := []attendance.Record{
		{MemberID: "A", EventID: "E1"},
		{MemberID: "A", EventID: "E1"},
		{MemberID: "B", EventID: "E1"},
		{MemberID: "ghost", EventID: "E2"},
	}
	got := ComputeEventSummaries([]member.Member{memberA, memberB}, []event.Event{e1, e2}, records, selection.New())
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Attendees != 2 || got[0].AttendanceRate != 100 {
		t.Errorf("E1 = %+v", got[0])
	}
	if got[1].Attendees != 0 || got[1].AttendanceRate != 0 {
		t.Errorf("E2 = %+v", got[1])
	}

	if none := ComputeEventSummaries(nil, []event.Event{e1}, records, selection.New()); none[0].AttendanceRate != 0 {
		t.Errorf("empty roster rate = %v, want 0", none[0].AttendanceRate)
	}
}

// TestWithRecordCounts fills raw counts by event id and leaves missing events at zero.
func TestWithRecordCounts(t *testing.T) {
	summaries := []EventSummary{{Event: e1}, {Event: e2}}
	got := WithRecordCounts(summaries, map[string]int{"E1": 4, "ghost": 9})
	if got[0].Records != 4 || got[1].Records != 0 {
		t.Errorf("records = %d, %d, want 4, 0", got[0].Records, got[1].Records)
	}
}

// TestCompute wires the full pipeline and reports the selected count.
func TestCompute(t *testing.T) {
	snap := Snapshot{
		Members:   []member.Member{memberA, memberB},
		Events:    []event.Event{e1, e2, e3},
		Records:   []attendance.Record{{MemberID: "A", EventID: "E1"}, {MemberID: "A", EventID: "E2"}},
		Selection: selection.New("E1", "E2"),
	}
	r := Compute(snap, 60)
	if r.Overview.TotalEvents != 3 || r.Overview.SelectedEventCount != 2 {
		t.Errorf("overview counts = %+v", r.Overview)
	}
	if r.Stats[0].AttendanceRate != 100 || r.Overview.MembersBelowThreshold != 1 {
		t.Errorf("report = %+v", r)
	}
	if r.Overview.AverageAttendanceRate != 50 {
		t.Errorf("average = %v, want 50", r.Overview.AverageAttendanceRate)
	}
}
