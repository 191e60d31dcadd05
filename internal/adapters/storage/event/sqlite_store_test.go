package event

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"rollcall/internal/adapters/storage"
	domain "rollcall/internal/domain/event"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

// TestSQLiteStore_SaveAndGet verifies a saved event reads back and a missing one wraps sql.ErrNoRows.
func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.Event{ID: "e1", Title: "Week 1", Timestamp: ts}))
	got, err := store.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "Week 1", got.Title)
	require.True(t, got.Timestamp.Equal(ts))

	_, err = store.GetByID(ctx, "e2")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

// TestSQLiteStore_ListChronological verifies events come back oldest first.
func TestSQLiteStore_ListChronological(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.Event{ID: "late", Title: "Late", Timestamp: base.Add(48 * time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.Event{ID: "early", Title: "Early", Timestamp: base}))
	require.NoError(t, store.Save(ctx, domain.Event{ID: "mid", Title: "Mid", Timestamp: base.Add(24 * time.Hour)}))

	events, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"early", "mid", "late"}, domain.IDs(events))
}

// TestSQLiteStore_List_BadTimestamp verifies an unparsable timestamp column surfaces as an error.
func TestSQLiteStore_List_BadTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, timestamp FROM event`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "timestamp"}).AddRow("e1", "Week 1", "yesterday"))

	_, err = NewSQLiteStore(db).List(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
