package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	memberStore "rollcall/internal/adapters/storage/member"
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
)

// SyntheticSeedDeps holds the stores needed for synthetic data seeding.
type SyntheticSeedDeps struct {
	MemberStore     MemberStore
	EventStore      EventStore
	AttendanceStore AttendanceStore
}

// SyntheticSeedOptions shapes the generated data.
type SyntheticSeedOptions struct {
	Members int
	Events  int
	Start   time.Time // first event; later events follow weekly
	Seed    uint64    // attendance pattern seed
}

// SyntheticSeedResult reports what was written.
type SyntheticSeedResult struct {
	Skipped    bool
	Members    int
	Events     int
	Attendance int
}

var synNames = []string{
	"Ana Lima", "Bruno Costa", "Carla Mendes", "Daniel Rocha", "Elena Park",
	"Farid Haddad", "Grace Okafor", "Hiro Tanaka", "Isla Brown", "Jonas Weber",
	"Kiri Walker", "Leila Nasser", "Mateo Ruiz", "Nina Petrova", "Oscar Hale",
	"Priya Nair", "Quinn Murphy", "Rosa Alves", "Sam Taylor", "Tane Ngata",
}

// ExecuteSeedSynthetic populates an empty database with members, weekly
// events and attendance drawn from a per-member propensity, so the dashboard
// shows a spread of rates around any sensible threshold.
// PRE: development mode only
// POST: nothing is written when members already exist
func ExecuteSeedSynthetic(ctx context.Context, opts SyntheticSeedOptions, deps SyntheticSeedDeps) (SyntheticSeedResult, error) {
	existing, err := deps.MemberStore.List(ctx, memberStore.ListFilter{Limit: 1})
	if err != nil {
		return SyntheticSeedResult{}, fmt.Errorf("check existing members: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("seed_event", "event", "synthetic_skip", "reason", "already_seeded")
		return SyntheticSeedResult{Skipped: true}, nil
	}

	if opts.Members <= 0 {
		opts.Members = len(synNames)
	}
	if opts.Events <= 0 {
		opts.Events = 12
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -7*opts.Events)
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var result SyntheticSeedResult
	events := make([]event.Event, 0, opts.Events)
	for i := range opts.Events {
		e := event.Event{
			ID:        uuid.New().String(),
			Title:     fmt.Sprintf("Session %d", i+1),
			Timestamp: opts.Start.AddDate(0, 0, 7*i),
		}
		if err := deps.EventStore.Save(ctx, e); err != nil {
			return result, fmt.Errorf("save event: %w", err)
		}
		events = append(events, e)
		result.Events++
	}

	for i := range opts.Members {
		name := synNames[i%len(synNames)]
		if i >= len(synNames) {
			name = fmt.Sprintf("%s %d", name, i/len(synNames)+1)
		}
		m := member.Member{
			ID:    uuid.New().String(),
			Name:  name,
			Email: fmt.Sprintf("member%02d@rollcall.test", i+1),
		}
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			return result, fmt.Errorf("save member: %w", err)
		}
		result.Members++

		// Propensity spans 0.3 to 1.0.
		propensity := 0.3 + 0.7*rng.Float64()
		for _, e := range events {
			if rng.Float64() >= propensity {
				continue
			}
			if err := deps.AttendanceStore.Save(ctx, attendance.Record{MemberID: m.ID, EventID: e.ID}); err != nil {
				return result, fmt.Errorf("save attendance: %w", err)
			}
			result.Attendance++
		}
	}

	slog.Info("seed_event", "event", "synthetic_seeded",
		"members", result.Members, "events", result.Events, "attendance", result.Attendance)
	return result, nil
}
