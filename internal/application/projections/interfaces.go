package projections

import (
	"context"

	"rollcall/internal/adapters/storage/member"
	domainAttendance "rollcall/internal/domain/attendance"
	domainEvent "rollcall/internal/domain/event"
	domainMember "rollcall/internal/domain/member"
)

// MemberStore interface for member queries.
type MemberStore interface {
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
}

// EventStore interface for event queries.
type EventStore interface {
	List(ctx context.Context) ([]domainEvent.Event, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	List(ctx context.Context) ([]domainAttendance.Record, error)
}

// RecordCounter returns stored attendance records per event id.
type RecordCounter interface {
	CountByEvent(ctx context.Context) (map[string]int, error)
}
