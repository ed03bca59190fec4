package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cyberwani/metabox/internal/store"
)

// AttachmentPostgres is a PostgreSQL implementation of
// store.AttachmentStore.
type AttachmentPostgres struct {
	db *sql.DB
}

// NewAttachmentPostgres creates a new AttachmentPostgres repository.
func NewAttachmentPostgres(db *sql.DB) *AttachmentPostgres {
	return &AttachmentPostgres{db: db}
}

var _ store.AttachmentStore = (*AttachmentPostgres)(nil)

// Create inserts a new attachment row and returns the stored record.
func (r *AttachmentPostgres) Create(ctx context.Context, att *store.Attachment) (*store.Attachment, error) {
	const q = `
		INSERT INTO attachments (parent_id, field_id, filename, storage_key, content_type, size, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	out := *att
	row := r.db.QueryRowContext(ctx, q,
		att.ParentID,
		att.FieldID,
		att.Filename,
		att.StorageKey,
		att.ContentType,
		att.Size,
		att.SortOrder,
	)
	if err := row.Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// Find fetches a single attachment by id.
func (r *AttachmentPostgres) Find(ctx context.Context, id int64) (*store.Attachment, error) {
	const q = `
		SELECT id, parent_id, field_id, filename, storage_key, content_type, size, sort_order, created_at
		FROM attachments
		WHERE id = $1
	`
	var att store.Attachment
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&att.ID,
		&att.ParentID,
		&att.FieldID,
		&att.Filename,
		&att.StorageKey,
		&att.ContentType,
		&att.Size,
		&att.SortOrder,
		&att.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// ListForField returns the attachments of one field ordered by sort
// key.
func (r *AttachmentPostgres) ListForField(ctx context.Context, parentID int64, fieldID string) ([]store.Attachment, error) {
	const q = `
		SELECT id, parent_id, field_id, filename, storage_key, content_type, size, sort_order, created_at
		FROM attachments
		WHERE parent_id = $1 AND field_id = $2
		ORDER BY sort_order, id
	`
	rows, err := r.db.QueryContext(ctx, q, parentID, fieldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]store.Attachment, 0)
	for rows.Next() {
		var att store.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.ParentID,
			&att.FieldID,
			&att.Filename,
			&att.StorageKey,
			&att.ContentType,
			&att.Size,
			&att.SortOrder,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, att)
	}
	return items, rows.Err()
}

// SetSortOrder updates one attachment's sort key.
func (r *AttachmentPostgres) SetSortOrder(ctx context.Context, id, order int64) error {
	const q = `UPDATE attachments SET sort_order = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, order)
	return err
}

// Delete removes an attachment row. Deleting an absent row is not an
// error.
func (r *AttachmentPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM attachments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
