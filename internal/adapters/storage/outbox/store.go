package outbox

import (
	"context"

	domain "rollcall/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// Save persists an outbox entry to the database.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries still to be delivered (pending or retrying).
	// POST: Returns up to limit entries oldest first; limit <= 0 means no limit
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that ran out of attempts.
	// POST: Returns up to limit entries, most recently attempted first
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)
}
