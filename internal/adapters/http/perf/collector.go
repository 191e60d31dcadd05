// Package perf keeps a bounded window of request and query timings.
// Writes are cheap; aggregation happens on read.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// Kind distinguishes request vs query entries.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// String returns the metric-friendly name of the kind.
func (k Kind) String() string {
	if k == KindQuery {
		return "query"
	}
	return "request"
}

// Entry is a single timing record.
type Entry struct {
	Kind     Kind
	Label    string // "GET /api/attendance/stats" or "SELECT attendance"
	Status   int    // HTTP status, 0 for queries
	Duration time.Duration
	At       time.Time
}

// Collector is a fixed-size ring buffer of entries; when full the oldest is overwritten.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0, otherwise DefaultRingSize is used
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record appends an entry, overwriting the oldest when the buffer is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Series aggregates the buffered entries sharing a kind and label.
type Series struct {
	Kind  Kind
	Label string
	Count int
	Sum   time.Duration
	Max   time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// Snapshot aggregates buffered entries recorded at or after since.
// POST: series sorted by kind then label
func (c *Collector) Snapshot(since time.Time) []Series {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	type key struct {
		kind  Kind
		label string
	}
	durations := make(map[key][]time.Duration)
	for _, e := range buf {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		k := key{e.Kind, e.Label}
		durations[k] = append(durations[k], e.Duration)
	}

	out := make([]Series, 0, len(durations))
	for k, ds := range durations {
		sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
		s := Series{Kind: k.kind, Label: k.label, Count: len(ds), Max: ds[len(ds)-1]}
		for _, d := range ds {
			s.Sum += d
		}
		s.P50 = percentile(ds, 50)
		s.P95 = percentile(ds, 95)
		s.P99 = percentile(ds, 99)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// percentile interpolates the p-th percentile of an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-frac) + float64(sorted[upper])*frac)
}
