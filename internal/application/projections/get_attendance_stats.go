package projections

import (
	"context"
	"log/slog"
	"time"

	"rollcall/internal/domain/selection"
	"rollcall/internal/domain/stats"
)

// GetAttendanceStatsQuery carries query parameters.
type GetAttendanceStatsQuery struct {
	Selection   selection.Set
	Threshold   float64
	AlertLimit  int
	PreviewSize int
}

// GetAttendanceStatsResult carries the query result.
type GetAttendanceStatsResult struct {
	Report stats.Report
	Alerts []stats.Alert
}

// GetAttendanceStatsDeps holds dependencies for GetAttendanceStats.
type GetAttendanceStatsDeps = SnapshotDeps

// QueryGetAttendanceStats computes per-member stats, the overview and the
// threshold alerts over the current store contents.
// PRE: Threshold is within [0, 100]
// POST: Report.Stats has one entry per member in roster order
// INVARIANT: an empty selection scopes every known event
func QueryGetAttendanceStats(ctx context.Context, query GetAttendanceStatsQuery, deps GetAttendanceStatsDeps) (GetAttendanceStatsResult, error) {
	start := time.Now()
	snap, err := LoadSnapshot(ctx, deps, query.Selection)
	if err != nil {
		return GetAttendanceStatsResult{}, err
	}

	report := stats.Compute(snap, query.Threshold)
	alerts := stats.Alerts(report.Stats, query.Threshold, query.AlertLimit, query.PreviewSize)

	slog.Debug("stats_computed",
		"members", len(snap.Members),
		"events", len(snap.Events),
		"in_scope", report.Scope.Len(),
		"below", report.Overview.MembersBelowThreshold,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return GetAttendanceStatsResult{Report: report, Alerts: alerts}, nil
}
