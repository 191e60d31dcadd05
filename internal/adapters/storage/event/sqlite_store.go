package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rollcall/internal/adapters/storage"
	domain "rollcall/internal/domain/event"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db is a valid, open database connection with migrations applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates an event.
// PRE: e is a valid Event (Validate() returns nil)
// POST: event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event (id, title, timestamp) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, timestamp=excluded.timestamp`,
		e.ID, e.Title, e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetByID retrieves an event by ID.
// PRE: id is non-empty
// POST: returns the event or error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	var e domain.Event
	var ts string
	err := s.db.QueryRowContext(ctx, "SELECT id, title, timestamp FROM event WHERE id = ?", id).
		Scan(&e.ID, &e.Title, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("event not found: %w", err)
	}
	if err != nil {
		return domain.Event{}, err
	}
	if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse event timestamp: %w", err)
	}
	return e, nil
}

// List returns every event ordered by timestamp ascending, then id.
// POST: never nil
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, timestamp FROM event ORDER BY timestamp ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &e.Title, &ts); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
