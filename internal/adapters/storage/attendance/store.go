package attendance

import (
	"context"

	domain "rollcall/internal/domain/attendance"
)

// Store persists attendance records.
type Store interface {
	Save(ctx context.Context, r domain.Record) error
	List(ctx context.Context) ([]domain.Record, error)
	CountByEvent(ctx context.Context) (map[string]int, error)
}
