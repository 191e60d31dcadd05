package member

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"rollcall/internal/adapters/storage"
	domain "rollcall/internal/domain/member"
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

// TestSQLiteStore_SaveUpdatesInPlace verifies saving an existing id replaces its fields.
func TestSQLiteStore_SaveUpdatesInPlace(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m := domain.Member{ID: "m1", Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, store.Save(ctx, m))

	m.Name = "Ana Lima"
	require.NoError(t, store.Save(ctx, m))

	all, err := store.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, []domain.Member{m}, all)
}

// TestSQLiteStore_ListOrderAndPaging verifies name ordering with limit and offset.
func TestSQLiteStore_ListOrderAndPaging(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	for _, m := range []domain.Member{
		{ID: "m3", Name: "carla"},
		{ID: "m1", Name: "Ana"},
		{ID: "m2", Name: "Bruno"},
	} {
		require.NoError(t, store.Save(ctx, m))
	}

	all, err := store.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"m1", "m2", "m3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	page, err := store.List(ctx, ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "m2", page[0].ID)
}

func TestSQLiteStore_List_Mock(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantLen int
		wantErr bool
	}{
		{
			name: "rows scanned in order",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, email FROM member ORDER BY`).
					WithArgs(-1, 0).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
						AddRow("m1", "Ana", "ana@example.com").
						AddRow("m2", "Bruno", ""))
			},
			wantLen: 2,
		},
		{
			name: "empty table returns empty slice",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, email FROM member ORDER BY`).
					WithArgs(-1, 0).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))
			},
			wantLen: 0,
		},
		{
			name: "query error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, email FROM member ORDER BY`).
					WithArgs(-1, 0).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			store := NewSQLiteStore(db)
			got, err := store.List(ctx, ListFilter{})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				require.Len(t, got, tt.wantLen)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
