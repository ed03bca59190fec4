package attachment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cyberwani/metabox/internal/storage"
	"github.com/cyberwani/metabox/internal/storage/mocks"
	"github.com/cyberwani/metabox/internal/store"
	"github.com/cyberwani/metabox/internal/store/memory"
	"github.com/cyberwani/metabox/pkg/persist"
)

func newService(objects storage.Storage) (*Service, *memory.AttachmentStore, *memory.MetaStore) {
	atts := memory.NewAttachmentStore()
	meta := memory.NewMetaStore()
	return NewService(objects, atts, meta, nil), atts, meta
}

func TestUpload(t *testing.T) {
	objects := new(mocks.MockStorage)
	objects.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "media/7/key.png", Size: 8}, nil)

	svc, atts, _ := newService(objects)

	// PNG magic bytes so content detection has something real.
	content := strings.NewReader("\x89PNG\r\n\x1a\n")
	id, err := svc.Upload(context.Background(), 7, "gallery", "photo.png", 8, content)

	assert.NoError(t, err)
	assert.NotZero(t, id)

	record, err := atts.Find(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), record.ParentID)
	assert.Equal(t, "gallery", record.FieldID)
	assert.Equal(t, "photo.png", record.Filename)
	assert.Equal(t, int64(1), record.SortOrder)
	objects.AssertExpectations(t)
}

func TestUploadRollsBackStorageOnRecordFailure(t *testing.T) {
	objects := new(mocks.MockStorage)
	objects.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "media/7/key.bin", Size: 4}, nil)
	objects.On("Delete", mock.Anything, mock.Anything).Return(nil)

	failing := new(failingAttachmentStore)
	svc := NewService(objects, failing, memory.NewMetaStore(), nil)

	_, err := svc.Upload(context.Background(), 7, "docs", "x.bin", 4, strings.NewReader("data"))

	assert.Error(t, err)
	objects.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

type failingAttachmentStore struct{}

func (failingAttachmentStore) Create(context.Context, *store.Attachment) (*store.Attachment, error) {
	return nil, errors.New("db down")
}
func (failingAttachmentStore) Find(context.Context, int64) (*store.Attachment, error) {
	return nil, store.ErrNotFound
}
func (failingAttachmentStore) ListForField(context.Context, int64, string) ([]store.Attachment, error) {
	return nil, nil
}
func (failingAttachmentStore) SetSortOrder(context.Context, int64, int64) error { return nil }
func (failingAttachmentStore) Delete(context.Context, int64) error              { return nil }

func TestDeleteRemovesObjectRecordAndValue(t *testing.T) {
	objects := new(mocks.MockStorage)
	objects.On("Delete", mock.Anything, "media/7/a.jpg").Return(nil)

	svc, atts, meta := newService(objects)
	ctx := context.Background()

	record, _ := atts.Create(ctx, &store.Attachment{ParentID: 7, FieldID: "gallery", StorageKey: "media/7/a.jpg"})
	_ = meta.Add(ctx, 7, "gallery", "99")
	_ = meta.Add(ctx, 7, "gallery", "1")

	err := svc.Delete(ctx, record.ID, 7, "gallery")

	assert.NoError(t, err)
	_, err = atts.Find(ctx, record.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	values, _ := meta.Values(ctx, 7, "gallery")
	assert.Equal(t, []string{"99"}, values)
	objects.AssertExpectations(t)
}

func TestDeleteRejectsForeignAttachment(t *testing.T) {
	objects := new(mocks.MockStorage)
	svc, atts, _ := newService(objects)
	ctx := context.Background()

	record, _ := atts.Create(ctx, &store.Attachment{ParentID: 8, FieldID: "gallery", StorageKey: "media/8/b.jpg"})

	err := svc.Delete(ctx, record.ID, 7, "gallery")

	assert.ErrorIs(t, err, persist.ErrAuthorizationDenied)
	_, findErr := atts.Find(ctx, record.ID)
	assert.NoError(t, findErr)
}

func TestReorderAssignsOneBasedKeys(t *testing.T) {
	objects := new(mocks.MockStorage)
	svc, atts, _ := newService(objects)
	ctx := context.Background()

	a, _ := atts.Create(ctx, &store.Attachment{ParentID: 7, FieldID: "gallery", SortOrder: 1})
	b, _ := atts.Create(ctx, &store.Attachment{ParentID: 7, FieldID: "gallery", SortOrder: 2})
	c, _ := atts.Create(ctx, &store.Attachment{ParentID: 7, FieldID: "gallery", SortOrder: 3})

	// New order: c, a, b, plus an id belonging to nobody.
	err := svc.Reorder(ctx, 7, "gallery", []int64{c.ID, 999, a.ID, b.ID})

	assert.NoError(t, err)
	list, _ := atts.ListForField(ctx, 7, "gallery")
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, int64(1), list[0].SortOrder)
	assert.Equal(t, int64(3), list[2].SortOrder)
}

func TestForFieldPresignsURLs(t *testing.T) {
	objects := new(mocks.MockStorage)
	objects.On("PresignGet", mock.Anything, "media/7/a.jpg", mock.Anything).
		Return("https://cdn.example/a.jpg", nil)

	svc, atts, _ := newService(objects)
	ctx := context.Background()

	record, _ := atts.Create(ctx, &store.Attachment{ParentID: 7, FieldID: "gallery", Filename: "a.jpg", StorageKey: "media/7/a.jpg", SortOrder: 1})

	list, err := svc.ForField(ctx, 7, "gallery")

	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, record.ID, list[0].ID)
	assert.Equal(t, "https://cdn.example/a.jpg", list[0].URL)
}
