// Package store defines the metadata and attachment repositories
// backing stored field values.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("store: not found")

// Attachment is one uploaded file record, parented to the content item
// it was uploaded for and tagged with the originating field.
type Attachment struct {
	ID          int64
	ParentID    int64
	FieldID     string
	Filename    string
	StorageKey  string
	ContentType string
	Size        int64
	SortOrder   int64
	CreatedAt   time.Time
}

// MetaStore is the stored-value contract: per (item, key) lists of
// string values, last write wins.
type MetaStore interface {
	// Values returns every value stored under the key in insertion
	// order, nil when none exist.
	Values(ctx context.Context, itemID int64, key string) ([]string, error)
	// Set replaces the key with a single value.
	Set(ctx context.Context, itemID int64, key, value string) error
	// Add appends one value to the key.
	Add(ctx context.Context, itemID int64, key, value string) error
	// Delete removes the key entirely.
	Delete(ctx context.Context, itemID int64, key string) error
	// DeleteValue removes one specific value from the key, leaving
	// siblings in place.
	DeleteValue(ctx context.Context, itemID int64, key, value string) error
}

// AttachmentStore persists attachment records.
type AttachmentStore interface {
	Create(ctx context.Context, att *Attachment) (*Attachment, error)
	Find(ctx context.Context, id int64) (*Attachment, error)
	// ListForField returns the attachments of one field ordered by
	// sort_order then id.
	ListForField(ctx context.Context, parentID int64, fieldID string) ([]Attachment, error)
	SetSortOrder(ctx context.Context, id, order int64) error
	Delete(ctx context.Context, id int64) error
}
