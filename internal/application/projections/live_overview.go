package projections

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// LiveResult is one published computation.
type LiveResult struct {
	Generation uint64
	Query      GetAttendanceStatsQuery
	Result     GetAttendanceStatsResult
	ComputedAt time.Time
}

// LiveOverview holds the most recent dashboard computation. Every Refresh
// takes a generation number when it starts; a result is published only if
// no later-started refresh has already published. Concurrent refreshes
// therefore resolve last-write-wins by start order.
type LiveOverview struct {
	deps SnapshotDeps
	now  func() time.Time

	next atomic.Uint64

	mu      sync.RWMutex
	current *LiveResult
}

// NewLiveOverview creates a LiveOverview reading from deps.
func NewLiveOverview(deps SnapshotDeps) *LiveOverview {
	return &LiveOverview{deps: deps, now: time.Now}
}

// Refresh recomputes with query and publishes the result unless a newer
// refresh has already published.
// POST: returns the computed result and whether it was published
func (l *LiveOverview) Refresh(ctx context.Context, query GetAttendanceStatsQuery) (LiveResult, bool, error) {
	gen := l.next.Add(1)
	res, err := QueryGetAttendanceStats(ctx, query, l.deps)
	if err != nil {
		return LiveResult{}, false, err
	}
	live := LiveResult{Generation: gen, Query: query, Result: res, ComputedAt: l.now()}
	return live, l.publish(live), nil
}

func (l *LiveOverview) publish(live LiveResult) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil && l.current.Generation > live.Generation {
		return false
	}
	l.current = &live
	return true
}

// Latest returns the published result, if any.
func (l *LiveOverview) Latest() (LiveResult, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return LiveResult{}, false
	}
	return *l.current, true
}
