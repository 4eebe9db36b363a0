package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dreamlister/dreamlister-api/internal/domain"
	"github.com/dreamlister/dreamlister-api/internal/platform/logger"
	"github.com/dreamlister/dreamlister-api/internal/store"
)

// itemColumns is the fixed column list used by all item SELECTs, matching
// the scan order in scanItem.
const itemColumns = `item_id, username, title, name, description, qty, price, notes, created_at, updated_at`

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the
// ItemStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresItemStore(db store.DBTX, log *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: log.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// rowScanner abstracts *sql.Row and *sql.Rows for scanItem.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one item row. Optional columns are nullable in the schema,
// so they scan through sql.Null* wrappers.
func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item        domain.Item
		title       sql.NullString
		name        sql.NullString
		description sql.NullString
		qty         sql.NullInt64
		price       sql.NullFloat64
		notes       sql.NullString
	)

	err := row.Scan(
		&item.ID,
		&item.Username,
		&title,
		&name,
		&description,
		&qty,
		&price,
		&notes,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Title = title.String
	item.Name = name.String
	item.Description = description.String
	item.Qty = qty.Int64
	item.Price = price.Float64
	item.Notes = notes.String
	return &item, nil
}

// buildInsertItemQuery builds the INSERT statement and argument list for a
// new item row. Column names come only from the allow-list, in its stable
// order; every value is bound as a positional parameter. The owner username
// is always the first column and cannot be overridden by fields.
func buildInsertItemQuery(username string, fields domain.Fields, now time.Time) (string, []any) {
	columns := []string{"username"}
	args := []any{username}

	for _, name := range domain.MutableItemColumns() {
		if value, ok := fields[name]; ok {
			columns = append(columns, name)
			args = append(args, value)
		}
	}
	columns = append(columns, "created_at", "updated_at")
	args = append(args, now, now)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		`INSERT INTO items (%s) VALUES (%s) RETURNING item_id`,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args
}

// buildUpdateItemQuery builds the UPDATE statement and argument list for an
// item row, scoped to owner and item ID. Assignments come only from the
// allow-list, in its stable order.
func buildUpdateItemQuery(username string, itemID int64, fields domain.Fields, now time.Time) (string, []any) {
	var (
		assignments []string
		args        []any
	)
	for _, name := range domain.MutableItemColumns() {
		if value, ok := fields[name]; ok {
			assignments = append(assignments, fmt.Sprintf("%s = $%d", name, len(args)+1))
			args = append(args, value)
		}
	}
	assignments = append(assignments, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, now)

	query := fmt.Sprintf(
		`UPDATE items SET %s WHERE username = $%d AND item_id = $%d`,
		strings.Join(assignments, ", "),
		len(args)+1,
		len(args)+2,
	)
	args = append(args, username, itemID)
	return query, args
}

// ListByOwner implements store.ItemStore.ListByOwner.
func (s *PostgresItemStore) ListByOwner(ctx context.Context, username string) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM items
		WHERE username = $1
		ORDER BY item_id
	`, itemColumns)

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		log.Error("failed to query items by owner",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, store.NewStoreError("item", "list", "query failed", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan item row",
				slog.String("error", err.Error()))
			return nil, store.NewStoreError("item", "list", "scan failed", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("item", "list", "row iteration failed", err)
	}

	// Empty collection is a valid result, not an error.
	if items == nil {
		items = []*domain.Item{}
	}

	log.Debug("listed items by owner",
		slog.String("username", username),
		slog.Int("count", len(items)))
	return items, nil
}

// GetByID implements store.ItemStore.GetByID.
// Returns store.ErrItemNotFound if no row matches owner and ID.
func (s *PostgresItemStore) GetByID(ctx context.Context, username string, itemID int64) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM items
		WHERE username = $1 AND item_id = $2
	`, itemColumns)

	item, err := scanItem(s.db.QueryRowContext(ctx, query, username, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("item not found",
				slog.String("username", username),
				slog.Int64("item_id", itemID))
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get item by ID",
			slog.String("error", err.Error()),
			slog.String("username", username),
			slog.Int64("item_id", itemID))
		return nil, store.NewStoreError("item", "get", "query failed", err)
	}

	return item, nil
}

// Create implements store.ItemStore.Create. The inserted row's username is
// always the owner passed in; the fields mapping cannot override it because
// ValidateFields rejects non-allow-listed columns.
func (s *PostgresItemStore) Create(ctx context.Context, username string, fields domain.Fields) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateFields(fields); err != nil {
		log.Warn("item field validation failed during create",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return 0, err
	}

	query, args := buildInsertItemQuery(username, fields, time.Now().UTC())

	var itemID int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&itemID); err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("item owner does not exist",
				slog.String("username", username))
			return 0, store.ErrUserNotFound
		}
		log.Error("failed to create item",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return 0, store.NewStoreError("item", "create", "insert failed", err)
	}

	log.Info("item created successfully",
		slog.String("username", username),
		slog.Int64("item_id", itemID))
	return itemID, nil
}

// Update implements store.ItemStore.Update.
// Returns store.ErrItemNotFound when no row matched owner and ID.
func (s *PostgresItemStore) Update(ctx context.Context, username string, itemID int64, fields domain.Fields) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateFields(fields); err != nil {
		log.Warn("item field validation failed during update",
			slog.String("error", err.Error()),
			slog.String("username", username),
			slog.Int64("item_id", itemID))
		return err
	}

	query, args := buildUpdateItemQuery(username, itemID, fields, time.Now().UTC())

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update item",
			slog.String("error", err.Error()),
			slog.String("username", username),
			slog.Int64("item_id", itemID))
		return store.NewStoreError("item", "update", "update failed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.Int64("item_id", itemID))
		return store.NewStoreError("item", "update", "rows affected unavailable", err)
	}

	if rowsAffected == 0 {
		log.Debug("item not found for update",
			slog.String("username", username),
			slog.Int64("item_id", itemID))
		return store.ErrItemNotFound
	}

	log.Info("item updated successfully",
		slog.String("username", username),
		slog.Int64("item_id", itemID))
	return nil
}

// Delete implements store.ItemStore.Delete. Deleting a row that does not
// exist (or is owned by someone else) succeeds without effect.
func (s *PostgresItemStore) Delete(ctx context.Context, username string, itemID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM items WHERE username = $1 AND item_id = $2`

	result, err := s.db.ExecContext(ctx, query, username, itemID)
	if err != nil {
		log.Error("failed to delete item",
			slog.String("error", err.Error()),
			slog.String("username", username),
			slog.Int64("item_id", itemID))
		return store.NewStoreError("item", "delete", "delete failed", err)
	}

	if rowsAffected, err := result.RowsAffected(); err == nil {
		log.Info("item delete executed",
			slog.String("username", username),
			slog.Int64("item_id", itemID),
			slog.Int64("rows_affected", rowsAffected))
	}

	return nil
}
