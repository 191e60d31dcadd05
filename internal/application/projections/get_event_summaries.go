package projections

import (
	"context"
	"fmt"

	"rollcall/internal/domain/selection"
	"rollcall/internal/domain/stats"
)

// GetEventSummariesQuery carries query parameters.
type GetEventSummariesQuery struct {
	Selection selection.Set
}

// GetEventSummariesDeps holds dependencies for QueryGetEventSummaries.
type GetEventSummariesDeps struct {
	SnapshotDeps
	RecordCounter RecordCounter
}

// GetEventSummariesResult carries the query result.
type GetEventSummariesResult struct {
	Scope     stats.Scope
	Summaries []stats.EventSummary
}

// QueryGetEventSummaries returns attendee counts for each in-scope event.
// PRE: deps stores are non-nil
// POST: Summaries follow event catalog order
func QueryGetEventSummaries(ctx context.Context, query GetEventSummariesQuery, deps GetEventSummariesDeps) (GetEventSummariesResult, error) {
	snap, err := LoadSnapshot(ctx, deps.SnapshotDeps, query.Selection)
	if err != nil {
		return GetEventSummariesResult{}, err
	}
	counts, err := deps.RecordCounter.CountByEvent(ctx)
	if err != nil {
		return GetEventSummariesResult{}, fmt.Errorf("count attendance: %w", err)
	}
	summaries := stats.ComputeEventSummaries(snap.Members, snap.Events, snap.Records, snap.Selection)
	return GetEventSummariesResult{
		Scope:     stats.ResolveScope(snap.Events, snap.Selection),
		Summaries: stats.WithRecordCounts(summaries, counts),
	}, nil
}
