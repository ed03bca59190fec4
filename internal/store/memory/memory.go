// Package memory provides in-process store implementations for tests
// and embedded use without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cyberwani/metabox/internal/store"
)

type metaKey struct {
	itemID int64
	key    string
}

// MetaStore is an in-memory store.MetaStore.
type MetaStore struct {
	mu     sync.RWMutex
	values map[metaKey][]string
}

// NewMetaStore builds an empty MetaStore.
func NewMetaStore() *MetaStore {
	return &MetaStore{values: make(map[metaKey][]string)}
}

var _ store.MetaStore = (*MetaStore)(nil)

func (s *MetaStore) Values(_ context.Context, itemID int64, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.values[metaKey{itemID, key}]...), nil
}

func (s *MetaStore) Set(_ context.Context, itemID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[metaKey{itemID, key}] = []string{value}
	return nil
}

func (s *MetaStore) Add(_ context.Context, itemID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := metaKey{itemID, key}
	s.values[k] = append(s.values[k], value)
	return nil
}

func (s *MetaStore) Delete(_ context.Context, itemID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, metaKey{itemID, key})
	return nil
}

func (s *MetaStore) DeleteValue(_ context.Context, itemID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := metaKey{itemID, key}
	kept := s.values[k][:0]
	for _, v := range s.values[k] {
		if v != value {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(s.values, k)
		return nil
	}
	s.values[k] = kept
	return nil
}

// AttachmentStore is an in-memory store.AttachmentStore.
type AttachmentStore struct {
	mu    sync.RWMutex
	next  int64
	items map[int64]store.Attachment
}

// NewAttachmentStore builds an empty AttachmentStore.
func NewAttachmentStore() *AttachmentStore {
	return &AttachmentStore{items: make(map[int64]store.Attachment)}
}

var _ store.AttachmentStore = (*AttachmentStore)(nil)

func (s *AttachmentStore) Create(_ context.Context, att *store.Attachment) (*store.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	out := *att
	out.ID = s.next
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	s.items[out.ID] = out
	return &out, nil
}

func (s *AttachmentStore) Find(_ context.Context, id int64) (*store.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	att, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &att, nil
}

func (s *AttachmentStore) ListForField(_ context.Context, parentID int64, fieldID string) ([]store.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Attachment, 0)
	for _, att := range s.items {
		if att.ParentID == parentID && att.FieldID == fieldID {
			out = append(out, att)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *AttachmentStore) SetSortOrder(_ context.Context, id, order int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	att, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	att.SortOrder = order
	s.items[id] = att
	return nil
}

func (s *AttachmentStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}
