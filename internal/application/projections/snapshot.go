package projections

import (
	"context"
	"fmt"

	"rollcall/internal/adapters/storage/member"
	"rollcall/internal/domain/selection"
	"rollcall/internal/domain/stats"
)

// SnapshotDeps holds the stores a snapshot is read from.
type SnapshotDeps struct {
	MemberStore     MemberStore
	EventStore      EventStore
	AttendanceStore AttendanceStore
}

// LoadSnapshot reads the roster, the event catalog and every attendance
// record into one immutable snapshot.
// PRE: all stores are non-nil
// POST: the snapshot owns a clone of sel
func LoadSnapshot(ctx context.Context, deps SnapshotDeps, sel selection.Set) (stats.Snapshot, error) {
	members, err := deps.MemberStore.List(ctx, member.ListFilter{})
	if err != nil {
		return stats.Snapshot{}, fmt.Errorf("list members: %w", err)
	}
	events, err := deps.EventStore.List(ctx)
	if err != nil {
		return stats.Snapshot{}, fmt.Errorf("list events: %w", err)
	}
	records, err := deps.AttendanceStore.List(ctx)
	if err != nil {
		return stats.Snapshot{}, fmt.Errorf("list attendance: %w", err)
	}
	return stats.Snapshot{
		Members:   members,
		Events:    events,
		Records:   records,
		Selection: sel.Clone(),
	}, nil
}
