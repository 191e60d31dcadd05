package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rollcall/internal/adapters/email"
	"rollcall/internal/application/projections"
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
)

func digestDeps(sender email.Sender) SendThresholdAlertsDeps {
	t0 := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	var events []event.Event
	for i, title := range []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"} {
		events = append(events, event.Event{ID: title, Title: title, Timestamp: t0.AddDate(0, 0, 7*i)})
	}
	return SendThresholdAlertsDeps{
		Stores: projections.SnapshotDeps{
			MemberStore: &mockMemberStore{members: []member.Member{
				{ID: "a", Name: "Ana_Lima", Email: "ana@example.com"},
				{ID: "b", Name: "Bruno", Email: "bruno@example.com"},
			}},
			EventStore:      &mockEventStore{events: events},
			AttendanceStore: &mockAttendanceStore{records: []attendance.Record{
				{MemberID: "a", EventID: "Week 1"},
				{MemberID: "b", EventID: "Week 1"}, {MemberID: "b", EventID: "Week 2"},
				{MemberID: "b", EventID: "Week 3"}, {MemberID: "b", EventID: "Week 4"},
			}},
		},
		Sender: sender,
	}
}

// TestExecuteSendThresholdAlerts_Sends verifies the digest content and delivery.
func TestExecuteSendThresholdAlerts_Sends(t *testing.T) {
	sender := email.NewNoopSender()
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	res, err := ExecuteSendThresholdAlerts(context.Background(), SendThresholdAlertsInput{
		Query: projections.GetAttendanceStatsQuery{Threshold: 75, AlertLimit: 5, PreviewSize: 2},
		To:    []string{"coach@example.com"},
		Now:   now,
	}, digestDeps(sender))
	if err != nil {
		t.Fatalf("ExecuteSendThresholdAlerts: %v", err)
	}
	if !res.Sent || res.Flagged != 1 {
		t.Fatalf("result = %+v", res)
	}

	for _, want := range []string{
		"# Attendance below 75.0%",
		"10 Apr 2026, based on all events",
		"1 of 2 members (50.0%)",
		`## Ana\_Lima: 20.0%`,
		"Attended 1 of 5 events. Missed:",
		"- Week 2 (2026-03-09)",
		"- and 2 more",
	} {
		if !strings.Contains(res.Markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, res.Markdown)
		}
	}
	if strings.Contains(res.Markdown, "Bruno") {
		t.Error("member at 80% must not be listed")
	}
	if !strings.Contains(res.HTML, "<h1>") || !strings.Contains(res.HTML, "<li>Week 2 (2026-03-09)</li>") {
		t.Errorf("html = %s", res.HTML)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if sent[0].Subject != "Attendance: 1 member below 75.0%" || sent[0].Tag != DigestTag {
		t.Errorf("message = %+v", sent[0])
	}
}

// TestExecuteSendThresholdAlerts_NoSend verifies dry runs, empty digests and missing recipients.
func TestExecuteSendThresholdAlerts_NoSend(t *testing.T) {
	sender := email.NewNoopSender()
	ctx := context.Background()

	res, err := ExecuteSendThresholdAlerts(ctx, SendThresholdAlertsInput{
		Query: projections.GetAttendanceStatsQuery{Threshold: 75}, To: []string{"x@example.com"}, DryRun: true,
	}, digestDeps(sender))
	if err != nil || res.Sent || res.Markdown == "" {
		t.Errorf("dry run: res=%+v err=%v", res, err)
	}

	res, err = ExecuteSendThresholdAlerts(ctx, SendThresholdAlertsInput{
		Query: projections.GetAttendanceStatsQuery{Threshold: 10}, To: []string{"x@example.com"},
	}, digestDeps(sender))
	if err != nil || res.Sent || !strings.Contains(res.Markdown, "Nobody is below the threshold.") {
		t.Errorf("nobody flagged: res=%+v err=%v", res, err)
	}

	_, err = ExecuteSendThresholdAlerts(ctx, SendThresholdAlertsInput{
		Query: projections.GetAttendanceStatsQuery{Threshold: 75},
	}, digestDeps(sender))
	if !errors.Is(err, email.ErrNoRecipients) {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
	if len(sender.Sent()) != 0 {
		t.Errorf("sent %d messages, want 0", len(sender.Sent()))
	}
}

// TestBuildDigestMarkdown_Truncated verifies flagged members beyond the limit are summarised.
func TestBuildDigestMarkdown_Truncated(t *testing.T) {
	deps := digestDeps(email.NewNoopSender())
	res, err := projections.QueryGetAttendanceStats(context.Background(),
		projections.GetAttendanceStatsQuery{Threshold: 100, AlertLimit: 1, PreviewSize: 0}, deps.Stores)
	if err != nil {
		t.Fatal(err)
	}
	md := BuildDigestMarkdown(res.Report, res.Alerts, time.Now())
	if !strings.Contains(md, "1 more members are below the threshold.") {
		t.Errorf("markdown = %s", md)
	}
	if strings.Contains(md, "Missed:") {
		t.Error("zero preview must not list missed events")
	}
}
