package web

import (
	"net/http"
	"strconv"

	"rollcall/internal/application/listutil"
	"rollcall/internal/application/orchestrators"
	"rollcall/internal/application/projections"
	"rollcall/internal/domain/export"
	"rollcall/internal/domain/stats"
)

// handleGetAttendanceStats handles GET /api/attendance/stats.
// Returns the scope, the roll-up and one sorted, paged row per member.
func handleGetAttendanceStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := parseStatsQuery(q)
	if err != nil {
		badRequest(w, err)
		return
	}
	result, err := projections.QueryGetAttendanceStats(r.Context(), query, stores.snapshotDeps())
	if err != nil {
		internalError(w, err)
		return
	}

	sortParams := listutil.ParseSortParams(q, listutil.StatsSortColumns)
	sorted := listutil.SortStats(result.Report.Stats, sortParams)
	page, info := listutil.Paginate(sorted, listutil.ParsePageParams(q, dashboard().PageSize))

	rows := make([]memberStatView, 0, len(page))
	for _, s := range page {
		rows = append(rows, newMemberStatView(s))
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Scope:    newScopeView(result.Report.Scope),
		Overview: newOverviewView(result.Report.Overview),
		Members:  rows,
		Page:     info,
		Sort:     sortParams.Sort,
		Dir:      sortParams.Dir,
	})
}

// handleGetAttendanceOverview handles GET /api/attendance/overview.
func handleGetAttendanceOverview(w http.ResponseWriter, r *http.Request) {
	query, err := parseStatsQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	result, err := projections.QueryGetAttendanceStats(r.Context(), query, stores.snapshotDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":    newScopeView(result.Report.Scope),
		"overview": newOverviewView(result.Report.Overview),
	})
}

// handleRefreshOverview handles POST /api/attendance/overview/refresh.
// Recomputes the live overview with the configured defaults.
func handleRefreshOverview(w http.ResponseWriter, r *http.Request) {
	if liveOverview == nil {
		http.Error(w, "live overview disabled", http.StatusServiceUnavailable)
		return
	}
	live, published, err := liveOverview.Refresh(r.Context(), defaultStatsQuery())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"generation":  live.Generation,
		"published":   published,
		"computed_at": live.ComputedAt,
		"overview":    newOverviewView(live.Result.Report.Overview),
	})
}

func newAlertsResponse(report stats.Report, alerts []stats.Alert) alertsResponse {
	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, alertView{
			Member:          newMemberStatView(a.Stat),
			MissedPreview:   newEventViews(a.MissedPreview),
			RemainingMissed: a.RemainingMissed,
		})
	}
	flagged := report.Overview.MembersBelowThreshold
	return alertsResponse{
		Scope:            newScopeView(report.Scope),
		Threshold:        report.Overview.Threshold,
		TotalFlagged:     flagged,
		Alerts:           views,
		RemainingFlagged: flagged - len(views),
	}
}

// handleGetAttendanceAlerts handles GET /api/attendance/alerts.
// Members strictly below threshold in roster order, capped by limit, each
// with a bounded preview of missed events.
func handleGetAttendanceAlerts(w http.ResponseWriter, r *http.Request) {
	query, err := parseStatsQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	result, err := projections.QueryGetAttendanceStats(r.Context(), query, stores.snapshotDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAlertsResponse(result.Report, result.Alerts))
}

// handleGetAlertDigest handles GET /api/attendance/alerts/digest.
// Returns the markdown digest that the send endpoint would email.
func handleGetAlertDigest(w http.ResponseWriter, r *http.Request) {
	query, err := parseStatsQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	result, err := projections.QueryGetAttendanceStats(r.Context(), query, stores.snapshotDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(orchestrators.BuildDigestMarkdown(result.Report, result.Alerts, timeNow())))
}

// handleSendAlertDigest handles POST /api/attendance/alerts/send.
func handleSendAlertDigest(w http.ResponseWriter, r *http.Request) {
	if emailSender == nil {
		http.Error(w, "email delivery is not configured", http.StatusServiceUnavailable)
		return
	}
	query, err := parseStatsQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	res, err := orchestrators.ExecuteSendThresholdAlerts(r.Context(), orchestrators.SendThresholdAlertsInput{
		Query:  query,
		To:     alertRecipients,
		DryRun: dryRun,
		Now:    timeNow(),
	}, orchestrators.SendThresholdAlertsDeps{Stores: stores.snapshotDeps(), Sender: emailSender, Outbox: digestOutbox()})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flagged":    res.Flagged,
		"sent":       res.Sent,
		"message_id": res.MessageID,
		"queued":     res.Queued,
		"outbox_id":  res.OutboxID,
	})
}

// digestOutbox returns the outbox as the orchestrator's interface, or nil when
// none is configured.
func digestOutbox() orchestrators.OutboxStore {
	if stores.OutboxStore == nil {
		return nil
	}
	return stores.OutboxStore
}

// handleListDeliveries handles GET /api/attendance/alerts/deliveries.
// Lists digests waiting for a retry and those that ran out of attempts.
func handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	if stores.OutboxStore == nil {
		http.Error(w, "delivery queue is not configured", http.StatusServiceUnavailable)
		return
	}
	pending, err := stores.OutboxStore.ListPending(r.Context(), 0)
	if err != nil {
		internalError(w, err)
		return
	}
	failed, err := stores.OutboxStore.ListFailed(r.Context(), 50)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pending": newDeliveryViews(pending),
		"failed":  newDeliveryViews(failed),
	})
}

// handleGetEventSummaries handles GET /api/attendance/events.
func handleGetEventSummaries(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query(), dashboard())
	if err != nil {
		badRequest(w, err)
		return
	}
	result, err := projections.QueryGetEventSummaries(r.Context(), projections.GetEventSummariesQuery{Selection: sel}, stores.eventSummaryDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	rows := make([]eventSummaryView, 0, len(result.Summaries))
	for _, s := range result.Summaries {
		rows = append(rows, eventSummaryView{
			Event:          newEventView(s.Event),
			Attendees:      s.Attendees,
			AttendanceRate: s.AttendanceRate,
			RateDisplay:    export.FormatRate(s.AttendanceRate),
			Records:        s.Records,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":  newScopeView(result.Scope),
		"events": rows,
	})
}

// handleExportAttendance handles GET /api/attendance/export.
// Streams the member stats as a CSV download.
func handleExportAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := parseStatsQuery(q)
	if err != nil {
		badRequest(w, err)
		return
	}
	result, err := projections.QueryGetAttendanceStats(r.Context(), query, stores.snapshotDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	sorted := listutil.SortStats(result.Report.Stats, listutil.ParseSortParams(q, listutil.StatsSortColumns))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(timeNow())+`"`)
	w.Write(export.AttendanceCSV(sorted))
}
