package attendance

import (
	"context"

	"rollcall/internal/adapters/storage"
	domain "rollcall/internal/domain/attendance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save records presence for the pair. Saving an existing pair is a no-op.
// PRE: r has been validated
// POST: exactly one row exists for (r.MemberID, r.EventID)
func (s *SQLiteStore) Save(ctx context.Context, r domain.Record) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO attendance (member_id, event_id) VALUES (?, ?)",
		r.MemberID, r.EventID,
	)
	return err
}

// List returns every attendance record ordered by member then event.
// POST: never nil
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Record, error) {
	return s.query(ctx, "SELECT member_id, event_id FROM attendance ORDER BY member_id, event_id")
}

// CountByEvent returns the number of records per event id.
// Counts include members the roster may not know about.
func (s *SQLiteStore) CountByEvent(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT event_id, COUNT(*) FROM attendance GROUP BY event_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var r domain.Record
		if err := rows.Scan(&r.MemberID, &r.EventID); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
