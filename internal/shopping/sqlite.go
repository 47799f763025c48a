package shopping

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SQLiteStore persists lists in SQLite. It relies on the schema applied by
// the database package's migrations.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB, log *zap.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, log: log}
}

func (s *SQLiteStore) CreateList(ctx context.Context, list *ShoppingList) error {
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := NewSlug()
		if err != nil {
			return err
		}

		err = s.insertList(ctx, slug, list)
		if err == nil {
			list.Slug = slug
			list.Revision = 1
			return nil
		}
		if isUniqueViolation(err) {
			s.log.Warn("slug collision, redrawing",
				zap.String("slug", slug),
				zap.Int("attempt", attempt+1))
			continue
		}
		return err
	}
	return fmt.Errorf("slug space exhausted after %d attempts", maxSlugAttempts)
}

func (s *SQLiteStore) insertList(ctx context.Context, slug string, list *ShoppingList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shopping_lists (id, supermarket, created_at, expires_at, revision)
		VALUES (?, ?, ?, ?, 1)`,
		slug, nullString(list.Supermarket), list.CreatedAt.UTC(), list.ExpiresAt.UTC())
	if err != nil {
		return err
	}

	if err := insertItems(ctx, tx, slug, list.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetList(ctx context.Context, slug string) (*ShoppingList, error) {
	list := &ShoppingList{Slug: slug}
	var supermarket sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT supermarket, created_at, expires_at, revision
		FROM shopping_lists WHERE id = ?`, slug).
		Scan(&supermarket, &list.CreatedAt, &list.ExpiresAt, &list.Revision)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Slug: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	list.Supermarket = supermarket.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, area, checked, position
		FROM shopping_items WHERE list_id = ? ORDER BY position`, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item ShoppingItem
		var quantity sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &quantity, &item.Area, &item.Checked, &item.Position); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Quantity = quantity.String
		list.Items = append(list.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return list, nil
}

func (s *SQLiteStore) ReplaceItems(ctx context.Context, slug string, expectedRevision int64, items []ShoppingItem) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE shopping_lists SET revision = revision + 1
		WHERE id = ? AND revision = ?`, slug, expectedRevision)
	if err != nil {
		return 0, fmt.Errorf("failed to bump revision: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM shopping_lists WHERE id = ?`, slug).Scan(&exists)
		if err == sql.ErrNoRows {
			return 0, &NotFoundError{Slug: slug}
		}
		if err != nil {
			return 0, err
		}
		return 0, &ConcurrencyConflictError{Slug: slug}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shopping_items WHERE list_id = ?`, slug); err != nil {
		return 0, fmt.Errorf("failed to clear items: %w", err)
	}
	if err := insertItems(ctx, tx, slug, items); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return expectedRevision + 1, nil
}

func (s *SQLiteStore) SetItemChecked(ctx context.Context, slug string, itemID int, checked bool) (*ShoppingItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE shopping_items SET checked = ?
		WHERE list_id = ? AND id = ?`, checked, slug, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, &NotFoundError{Slug: slug, ItemID: itemID}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE shopping_lists SET revision = revision + 1
		WHERE id = ?`, slug); err != nil {
		return nil, fmt.Errorf("failed to bump revision: %w", err)
	}

	var item ShoppingItem
	var quantity sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, quantity, area, checked, position
		FROM shopping_items WHERE list_id = ? AND id = ?`, slug, itemID).
		Scan(&item.ID, &item.Name, &quantity, &item.Area, &item.Checked, &item.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to reload item: %w", err)
	}
	item.Quantity = quantity.String

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return &item, nil
}

func (s *SQLiteStore) DeleteList(ctx context.Context, slug string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shopping_items WHERE list_id = ?`, slug); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM shopping_lists WHERE id = ?`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &NotFoundError{Slug: slug}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Progress(ctx context.Context, slug string) (int, int, error) {
	var checked, total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN checked THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM shopping_items WHERE list_id = ?`, slug).Scan(&checked, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load progress: %w", err)
	}
	if total == 0 {
		// Lists are never created empty, so no items means no list.
		return 0, 0, &NotFoundError{Slug: slug}
	}
	return checked, total, nil
}

func (s *SQLiteStore) Version(ctx context.Context, slug string) (int64, error) {
	var revision int64
	err := s.db.QueryRowContext(ctx,
		`SELECT revision FROM shopping_lists WHERE id = ?`, slug).Scan(&revision)
	if err == sql.ErrNoRows {
		return 0, &NotFoundError{Slug: slug}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load revision: %w", err)
	}
	return revision, nil
}

func (s *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM shopping_items WHERE list_id IN (
			SELECT id FROM shopping_lists WHERE expires_at <= ?
		)`, now.UTC()); err != nil {
		return 0, fmt.Errorf("failed to purge items: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM shopping_lists WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge lists: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w", err)
	}
	if affected > 0 {
		s.log.Info("purged expired lists", zap.Int64("count", affected))
	}
	return int(affected), nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func insertItems(ctx context.Context, tx *sql.Tx, slug string, items []ShoppingItem) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shopping_items (list_id, id, name, quantity, area, checked, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			slug, item.ID, item.Name, nullString(item.Quantity), item.Area, item.Checked, item.Position)
		if err != nil {
			return fmt.Errorf("failed to insert item %d: %w", item.ID, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
