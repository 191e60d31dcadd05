package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rollcall/internal/adapters/email"
	"rollcall/internal/application/projections"
	"rollcall/internal/domain/export"
	"rollcall/internal/domain/stats"
)

// DigestTag categorises threshold digests at the email provider.
const DigestTag = "threshold_digest"

// SendThresholdAlertsInput carries the computation and delivery options.
type SendThresholdAlertsInput struct {
	Query  projections.GetAttendanceStatsQuery
	To     []string
	DryRun bool
	Now    time.Time
}

// SendThresholdAlertsResult reports the digest that was built and whether it went out.
type SendThresholdAlertsResult struct {
	Flagged   int
	Markdown  string
	HTML      string
	Sent      bool
	MessageID string
	Queued    bool   // delivery failed and was queued for retry
	OutboxID  string // set when Queued
}

// SendThresholdAlertsDeps holds external dependencies for the digest orchestrator.
type SendThresholdAlertsDeps struct {
	Stores projections.SnapshotDeps
	Sender email.Sender
	Outbox OutboxStore // optional; failed sends are queued here
}

// ExecuteSendThresholdAlerts builds a digest of members below threshold and
// emails it to the configured recipients.
// PRE: Query.Threshold is within [0, 100]
// POST: no email is sent when nobody is flagged or DryRun is set
func ExecuteSendThresholdAlerts(ctx context.Context, input SendThresholdAlertsInput, deps SendThresholdAlertsDeps) (SendThresholdAlertsResult, error) {
	res, err := projections.QueryGetAttendanceStats(ctx, input.Query, deps.Stores)
	if err != nil {
		return SendThresholdAlertsResult{}, err
	}
	if input.Now.IsZero() {
		input.Now = time.Now()
	}

	md := BuildDigestMarkdown(res.Report, res.Alerts, input.Now)
	var html bytes.Buffer
	if err := goldmark.Convert([]byte(md), &html); err != nil {
		return SendThresholdAlertsResult{}, fmt.Errorf("render digest: %w", err)
	}

	out := SendThresholdAlertsResult{
		Flagged:  res.Report.Overview.MembersBelowThreshold,
		Markdown: md,
		HTML:     html.String(),
	}
	if out.Flagged == 0 || input.DryRun {
		slog.Info("threshold_digest_skipped", "flagged", out.Flagged, "dry_run", input.DryRun)
		return out, nil
	}
	if len(input.To) == 0 {
		return out, email.ErrNoRecipients
	}

	msg := email.Message{
		To:      input.To,
		Subject: digestSubject(res.Report.Overview),
		HTML:    out.HTML,
		Text:    md,
		Tag:     DigestTag,
	}
	receipt, err := deps.Sender.Send(ctx, msg)
	if err != nil {
		if deps.Outbox == nil {
			return out, fmt.Errorf("send digest: %w", err)
		}
		id, qerr := enqueueMessage(ctx, deps.Outbox, msg, input.Now)
		if qerr != nil {
			return out, fmt.Errorf("send digest: %w (queueing failed: %v)", err, qerr)
		}
		slog.Warn("threshold_digest_queued", "outbox_id", id, "error", err)
		out.Queued = true
		out.OutboxID = id
		return out, nil
	}
	out.Sent = true
	out.MessageID = receipt.MessageID
	slog.Info("threshold_digest_sent", "flagged", out.Flagged, "recipients", len(input.To), "message_id", receipt.MessageID)
	return out, nil
}

func digestSubject(ov stats.Overview) string {
	p := message.NewPrinter(language.English)
	if ov.MembersBelowThreshold == 1 {
		return p.Sprintf("Attendance: 1 member below %s", export.FormatRate(ov.Threshold))
	}
	return p.Sprintf("Attendance: %d members below %s", ov.MembersBelowThreshold, export.FormatRate(ov.Threshold))
}

// BuildDigestMarkdown renders the roll-up and the flagged members as markdown.
// Alerts are listed in the order given; the remaining count covers flagged
// members cut by the alert limit.
func BuildDigestMarkdown(report stats.Report, alerts []stats.Alert, now time.Time) string {
	p := message.NewPrinter(language.English)
	ov := report.Overview
	var b strings.Builder

	fmt.Fprintf(&b, "# Attendance below %s\n\n", export.FormatRate(ov.Threshold))
	fmt.Fprintf(&b, "_%s, %s_\n\n", now.Format("2 Jan 2006"), report.Scope.Describe())
	b.WriteString(p.Sprintf("%d of %d members (%s) are below the threshold. Average attendance is %s.\n\n",
		ov.MembersBelowThreshold, ov.TotalMembers,
		export.FormatRate(ov.PercentBelowThreshold), export.FormatRate(ov.AverageAttendanceRate)))

	if len(alerts) == 0 {
		b.WriteString("Nobody is below the threshold.\n")
		return b.String()
	}

	for _, a := range alerts {
		m := a.Stat.Member
		fmt.Fprintf(&b, "## %s: %s\n\n", escapeMarkdown(m.DisplayName()), export.FormatRate(a.Stat.AttendanceRate))
		b.WriteString(p.Sprintf("Attended %d of %d events.", a.Stat.EventsAttended, a.Stat.TotalEvents))
		if len(a.MissedPreview) == 0 {
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(" Missed:\n\n")
		for _, e := range a.MissedPreview {
			fmt.Fprintf(&b, "- %s (%s)\n", escapeMarkdown(e.Title), e.Timestamp.Format("2006-01-02"))
		}
		if a.RemainingMissed > 0 {
			b.WriteString(p.Sprintf("- and %d more\n", a.RemainingMissed))
		}
		b.WriteString("\n")
	}

	if rest := ov.MembersBelowThreshold - len(alerts); rest > 0 {
		b.WriteString(p.Sprintf("%d more members are below the threshold.\n", rest))
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `#`, `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
