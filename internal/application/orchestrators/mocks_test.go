package orchestrators

import (
	"context"
	"errors"

	"rollcall/internal/adapters/email"
	memberStore "rollcall/internal/adapters/storage/member"
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
	"rollcall/internal/domain/outbox"
)

type mockMemberStore struct {
	members []member.Member
}

// Save appends or replaces the member by ID.
func (m *mockMemberStore) Save(_ context.Context, mem member.Member) error {
	for i := range m.members {
		if m.members[i].ID == mem.ID {
			m.members[i] = mem
			return nil
		}
	}
	m.members = append(m.members, mem)
	return nil
}

// List returns seeded members, honouring Limit.
func (m *mockMemberStore) List(_ context.Context, f memberStore.ListFilter) ([]member.Member, error) {
	if f.Limit > 0 && f.Limit < len(m.members) {
		return m.members[:f.Limit], nil
	}
	return m.members, nil
}

type mockEventStore struct {
	events []event.Event
}

// Save appends the event.
func (m *mockEventStore) Save(_ context.Context, e event.Event) error {
	m.events = append(m.events, e)
	return nil
}

// List returns seeded events.
func (m *mockEventStore) List(_ context.Context) ([]event.Event, error) {
	return m.events, nil
}

type mockAttendanceStore struct {
	records []attendance.Record
	failOn  string
}

// Save appends the record unless its member matches failOn.
func (m *mockAttendanceStore) Save(_ context.Context, r attendance.Record) error {
	if m.failOn != "" && r.MemberID == m.failOn {
		return errors.New("disk full")
	}
	m.records = append(m.records, r)
	return nil
}

// List returns saved records.
func (m *mockAttendanceStore) List(_ context.Context) ([]attendance.Record, error) {
	return m.records, nil
}

type mockOutboxStore struct {
	entries []outbox.Entry
}

// Save inserts or replaces the entry by ID.
func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	for i := range m.entries {
		if m.entries[i].ID == e.ID {
			m.entries[i] = e
			return nil
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

// ListPending returns non-terminal entries in insertion order.
func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.IsTerminal() {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

// flakySender fails the first failures sends, then delivers through NoopSender.
type flakySender struct {
	failures int
	calls    int
	inner    *email.NoopSender
}

func (s *flakySender) Send(ctx context.Context, msg email.Message) (email.Receipt, error) {
	s.calls++
	if s.calls <= s.failures {
		return email.Receipt{}, errors.New("provider unavailable")
	}
	return s.inner.Send(ctx, msg)
}
