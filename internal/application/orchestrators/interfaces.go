package orchestrators

import (
	"context"

	memberStore "rollcall/internal/adapters/storage/member"
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/event"
	"rollcall/internal/domain/member"
	"rollcall/internal/domain/outbox"
)

// MemberStore is the member persistence the orchestrators need.
type MemberStore interface {
	Save(ctx context.Context, m member.Member) error
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
}

// EventStore is the event persistence the orchestrators need.
type EventStore interface {
	Save(ctx context.Context, e event.Event) error
	List(ctx context.Context) ([]event.Event, error)
}

// AttendanceStore is the attendance persistence the orchestrators need.
type AttendanceStore interface {
	Save(ctx context.Context, r attendance.Record) error
}

// OutboxStore is the delivery queue the digest orchestrators need.
type OutboxStore interface {
	Save(ctx context.Context, e outbox.Entry) error
	ListPending(ctx context.Context, limit int) ([]outbox.Entry, error)
}
