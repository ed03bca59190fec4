package postgres

import (
	"context"
	"database/sql"

	"github.com/cyberwani/metabox/internal/store"
)

// MetaPostgres is a PostgreSQL implementation of store.MetaStore. It
// uses database/sql with parameterized queries and contains no
// business logic.
type MetaPostgres struct {
	db *sql.DB
}

// NewMetaPostgres creates a new MetaPostgres repository.
func NewMetaPostgres(db *sql.DB) *MetaPostgres {
	return &MetaPostgres{db: db}
}

var _ store.MetaStore = (*MetaPostgres)(nil)

// Values returns stored values in insertion order.
func (r *MetaPostgres) Values(ctx context.Context, itemID int64, key string) ([]string, error) {
	const q = `
		SELECT value FROM item_meta
		WHERE item_id = $1 AND key = $2
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q, itemID, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Set replaces the key with a single value.
func (r *MetaPostgres) Set(ctx context.Context, itemID int64, key, value string) error {
	if err := r.Delete(ctx, itemID, key); err != nil {
		return err
	}
	return r.Add(ctx, itemID, key, value)
}

// Add appends one value.
func (r *MetaPostgres) Add(ctx context.Context, itemID int64, key, value string) error {
	const q = `INSERT INTO item_meta (item_id, key, value) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, q, itemID, key, value)
	return err
}

// Delete removes the key. Deleting an absent key is not an error.
func (r *MetaPostgres) Delete(ctx context.Context, itemID int64, key string) error {
	const q = `DELETE FROM item_meta WHERE item_id = $1 AND key = $2`
	_, err := r.db.ExecContext(ctx, q, itemID, key)
	return err
}

// DeleteValue removes one value, leaving sibling values in place.
func (r *MetaPostgres) DeleteValue(ctx context.Context, itemID int64, key, value string) error {
	const q = `DELETE FROM item_meta WHERE item_id = $1 AND key = $2 AND value = $3`
	_, err := r.db.ExecContext(ctx, q, itemID, key, value)
	return err
}
