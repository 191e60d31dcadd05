package member

import (
	"context"

	domain "rollcall/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	Save(ctx context.Context, value domain.Member) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
}

// ListFilter carries filtering parameters for List operations.
// A zero Limit lists every member.
type ListFilter struct {
	Limit  int
	Offset int
}
