package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamlister/dreamlister-api/internal/domain"
	"github.com/dreamlister/dreamlister-api/internal/store"
)

// mockDBTX implements store.DBTX and records the last statement executed so
// tests can inspect the generated SQL and bound arguments without a database.
type mockDBTX struct {
	execQuery  string
	execArgs   []any
	execResult sql.Result
	execErr    error

	queryErr error
}

func (m *mockDBTX) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	m.execQuery = query
	m.execArgs = args
	return m.execResult, m.execErr
}

func (m *mockDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, nil
}

func (m *mockDBTX) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return nil, sql.ErrNoRows
}

func (m *mockDBTX) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

// mockResult implements sql.Result for testing.
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, nil }

func (m mockResult) RowsAffected() (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.rowsAffected, nil
}

func TestNewPostgresItemStore(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewPostgresItemStore(nil, nil)
	})

	s := NewPostgresItemStore(&mockDBTX{}, nil)
	require.NotNil(t, s)
	assert.NotNil(t, s.logger)
}

func TestBuildInsertItemQuery(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("all allowed fields in stable order", func(t *testing.T) {
		t.Parallel()

		fields := domain.Fields{
			"notes":       "soon",
			"price":       9.99,
			"qty":         int64(2),
			"description": "a thing",
			"name":        "x",
			"title":       "book",
		}

		query, args := buildInsertItemQuery("alice", fields, now)

		assert.Equal(t,
			`INSERT INTO items (username, title, name, description, qty, price, notes, created_at, updated_at) `+
				`VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING item_id`,
			query)
		assert.Equal(t,
			[]any{"alice", "book", "x", "a thing", int64(2), 9.99, "soon", now, now},
			args)
	})

	t.Run("subset keeps allow-list order", func(t *testing.T) {
		t.Parallel()

		// Map iteration order must not leak into the statement.
		query, args := buildInsertItemQuery("alice", domain.Fields{"qty": int64(1), "title": "book"}, now)

		assert.Equal(t,
			`INSERT INTO items (username, title, qty, created_at, updated_at) `+
				`VALUES ($1, $2, $3, $4, $5) RETURNING item_id`,
			query)
		assert.Equal(t, []any{"alice", "book", int64(1), now, now}, args)
	})

	t.Run("values are bound, never interpolated", func(t *testing.T) {
		t.Parallel()

		hostile := `'; DROP TABLE items; --`
		query, args := buildInsertItemQuery("alice", domain.Fields{"title": hostile}, now)

		assert.NotContains(t, query, hostile)
		assert.Contains(t, args, hostile)
	})
}

func TestBuildUpdateItemQuery(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	query, args := buildUpdateItemQuery("alice", 7, domain.Fields{"qty": int64(3), "title": "book"}, now)

	assert.Equal(t,
		`UPDATE items SET title = $1, qty = $2, updated_at = $3 WHERE username = $4 AND item_id = $5`,
		query)
	assert.Equal(t, []any{"book", int64(3), now, "alice", int64(7)}, args)
}

func TestScanItem(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	t.Run("full row", func(t *testing.T) {
		t.Parallel()

		item, err := scanItem(&fakeRow{values: []any{
			int64(7), "alice", "book", "x", "a thing", int64(2), 9.99, "soon", created, updated,
		}})
		require.NoError(t, err)

		assert.Equal(t, int64(7), item.ID)
		assert.Equal(t, "alice", item.Username)
		assert.Equal(t, "book", item.Title)
		assert.Equal(t, "x", item.Name)
		assert.Equal(t, "a thing", item.Description)
		assert.Equal(t, int64(2), item.Qty)
		assert.Equal(t, 9.99, item.Price)
		assert.Equal(t, "soon", item.Notes)
		assert.Equal(t, created, item.CreatedAt)
		assert.Equal(t, updated, item.UpdatedAt)
	})

	t.Run("null optional columns scan to zero values", func(t *testing.T) {
		t.Parallel()

		item, err := scanItem(&fakeRow{values: []any{
			int64(7), "alice", nil, nil, nil, nil, nil, nil, created, updated,
		}})
		require.NoError(t, err)

		assert.Empty(t, item.Title)
		assert.Empty(t, item.Name)
		assert.Empty(t, item.Description)
		assert.Zero(t, item.Qty)
		assert.Zero(t, item.Price)
		assert.Empty(t, item.Notes)
	})

	t.Run("scan error propagates", func(t *testing.T) {
		t.Parallel()

		_, err := scanItem(&fakeRow{err: errors.New("bad column")})
		assert.Error(t, err)
	})
}

// fakeRow implements rowScanner, delivering canned values. A nil value marks
// a NULL column.
type fakeRow struct {
	values []any
	err    error
}

func (f *fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	for i, d := range dest {
		value := f.values[i]
		switch p := d.(type) {
		case *int64:
			*p = value.(int64)
		case *string:
			*p = value.(string)
		case *time.Time:
			*p = value.(time.Time)
		case *sql.NullString:
			if s, ok := value.(string); ok {
				*p = sql.NullString{String: s, Valid: true}
			} else {
				*p = sql.NullString{}
			}
		case *sql.NullInt64:
			if n, ok := value.(int64); ok {
				*p = sql.NullInt64{Int64: n, Valid: true}
			} else {
				*p = sql.NullInt64{}
			}
		case *sql.NullFloat64:
			if n, ok := value.(float64); ok {
				*p = sql.NullFloat64{Float64: n, Valid: true}
			} else {
				*p = sql.NullFloat64{}
			}
		}
	}
	return nil
}

func TestItemStoreUpdate_RowScoping(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{execResult: mockResult{rowsAffected: 1}}
	s := NewPostgresItemStore(db, nil)

	err := s.Update(context.Background(), "alice", 7, domain.Fields{"title": "book"})
	require.NoError(t, err)

	// The owner is part of the WHERE clause, so a row owned by someone else
	// can never match.
	assert.Contains(t, db.execQuery, "WHERE username = $3 AND item_id = $4")
	assert.Equal(t, "alice", db.execArgs[2])
	assert.Equal(t, int64(7), db.execArgs[3])
}

func TestItemStoreUpdate_NoRowMatched(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{execResult: mockResult{rowsAffected: 0}}
	s := NewPostgresItemStore(db, nil)

	err := s.Update(context.Background(), "alice", 99, domain.Fields{"title": "book"})
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestItemStoreUpdate_RejectsUnknownFieldBeforeSQL(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{}
	s := NewPostgresItemStore(db, nil)

	err := s.Update(context.Background(), "alice", 7, domain.Fields{"username": "mallory"})
	assert.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Empty(t, db.execQuery, "no statement may be built from rejected fields")
}

func TestItemStoreUpdate_ExecFailure(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{execErr: errors.New("connection reset")}
	s := NewPostgresItemStore(db, nil)

	err := s.Update(context.Background(), "alice", 7, domain.Fields{"title": "book"})
	require.Error(t, err)
	assert.False(t, store.IsNotFoundError(err))

	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestItemStoreUpdate_RowsAffectedFailure(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{execResult: mockResult{err: errors.New("driver does not report rows")}}
	s := NewPostgresItemStore(db, nil)

	err := s.Update(context.Background(), "alice", 7, domain.Fields{"title": "book"})
	require.Error(t, err)
	assert.False(t, store.IsNotFoundError(err))
}

func TestItemStoreDelete_AbsentRowSucceeds(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{execResult: mockResult{rowsAffected: 0}}
	s := NewPostgresItemStore(db, nil)

	err := s.Delete(context.Background(), "alice", 99)
	assert.NoError(t, err)

	assert.Contains(t, db.execQuery, "WHERE username = $1 AND item_id = $2")
	assert.Equal(t, []any{"alice", int64(99)}, db.execArgs)
}

func TestItemStoreDelete_ExecFailure(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{execErr: errors.New("connection reset")}
	s := NewPostgresItemStore(db, nil)

	err := s.Delete(context.Background(), "alice", 7)
	require.Error(t, err)

	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestItemStoreList_QueryFailure(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{queryErr: errors.New("connection reset")}
	s := NewPostgresItemStore(db, nil)

	_, err := s.ListByOwner(context.Background(), "alice")
	require.Error(t, err)

	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestItemStoreCreate_RejectsUnknownFieldBeforeSQL(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{}
	s := NewPostgresItemStore(db, nil)

	_, err := s.Create(context.Background(), "alice", domain.Fields{"item_id": 42})
	assert.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Empty(t, db.execQuery)

	_, err = s.Create(context.Background(), "alice", domain.Fields{})
	assert.ErrorIs(t, err, domain.ErrNoFields)
}
