package event

import (
	"context"

	domain "rollcall/internal/domain/event"
)

// Store persists Event state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Event, error)
	Save(ctx context.Context, e domain.Event) error
	List(ctx context.Context) ([]domain.Event, error)
}
