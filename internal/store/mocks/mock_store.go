package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cyberwani/metabox/internal/store"
)

type MockMetaStore struct {
	mock.Mock
}

func (m *MockMetaStore) Values(ctx context.Context, itemID int64, key string) ([]string, error) {
	args := m.Called(ctx, itemID, key)
	values, _ := args.Get(0).([]string)
	return values, args.Error(1)
}

func (m *MockMetaStore) Set(ctx context.Context, itemID int64, key, value string) error {
	return m.Called(ctx, itemID, key, value).Error(0)
}

func (m *MockMetaStore) Add(ctx context.Context, itemID int64, key, value string) error {
	return m.Called(ctx, itemID, key, value).Error(0)
}

func (m *MockMetaStore) Delete(ctx context.Context, itemID int64, key string) error {
	return m.Called(ctx, itemID, key).Error(0)
}

func (m *MockMetaStore) DeleteValue(ctx context.Context, itemID int64, key, value string) error {
	return m.Called(ctx, itemID, key, value).Error(0)
}

type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockAttachmentStore) Create(ctx context.Context, att *store.Attachment) (*store.Attachment, error) {
	args := m.Called(ctx, att)
	out, _ := args.Get(0).(*store.Attachment)
	return out, args.Error(1)
}

func (m *MockAttachmentStore) Find(ctx context.Context, id int64) (*store.Attachment, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*store.Attachment)
	return out, args.Error(1)
}

func (m *MockAttachmentStore) ListForField(ctx context.Context, parentID int64, fieldID string) ([]store.Attachment, error) {
	args := m.Called(ctx, parentID, fieldID)
	out, _ := args.Get(0).([]store.Attachment)
	return out, args.Error(1)
}

func (m *MockAttachmentStore) SetSortOrder(ctx context.Context, id, order int64) error {
	return m.Called(ctx, id, order).Error(0)
}

func (m *MockAttachmentStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
