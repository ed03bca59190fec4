// Package attachment implements the upload, delete, and reorder use
// cases for media attached to content items through box fields.
package attachment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cyberwani/metabox/internal/storage"
	"github.com/cyberwani/metabox/internal/store"
	"github.com/cyberwani/metabox/pkg/persist"
	"github.com/cyberwani/metabox/pkg/render"
)

// sniffLen is how many leading bytes content-type detection reads.
const sniffLen = 3072

// DefaultPresignExpiry bounds how long rendered media URLs stay valid.
const DefaultPresignExpiry = time.Hour

// Service coordinates object storage, attachment records, and stored
// values. It implements persist.Uploader and render.AttachmentSource.
type Service struct {
	objects       storage.Storage
	attachments   store.AttachmentStore
	meta          store.MetaStore
	log           logrus.FieldLogger
	presignExpiry time.Duration
}

// NewService constructs an attachment service.
func NewService(objects storage.Storage, attachments store.AttachmentStore, meta store.MetaStore, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		objects:       objects,
		attachments:   attachments,
		meta:          meta,
		log:           logger,
		presignExpiry: DefaultPresignExpiry,
	}
}

var (
	_ persist.Uploader        = (*Service)(nil)
	_ render.AttachmentSource = (*Service)(nil)
)

// Upload streams the file into object storage and records an
// attachment parented to the item. Storage is rolled back when the
// record cannot be created.
func (s *Service) Upload(ctx context.Context, itemID int64, fieldID, filename string, size int64, content io.Reader) (int64, error) {
	if content == nil {
		return 0, fmt.Errorf("attachment: nil content for %q", filename)
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(content, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("attachment: read %q: %w", filename, err)
	}
	header = header[:n]
	mtype := mimetype.Detect(header)
	body := io.MultiReader(bytes.NewReader(header), content)

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = mtype.Extension()
	}
	key := fmt.Sprintf("media/%d/%s%s", itemID, uuid.NewString(), ext)

	info, err := s.objects.Put(ctx, key, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: mtype.String(),
		Metadata:    map[string]string{"original-filename": filename},
	})
	if err != nil {
		return 0, fmt.Errorf("attachment: upload to storage: %w", err)
	}

	siblings, err := s.attachments.ListForField(ctx, itemID, fieldID)
	if err != nil {
		return 0, err
	}

	record, err := s.attachments.Create(ctx, &store.Attachment{
		ParentID:    itemID,
		FieldID:     fieldID,
		Filename:    filename,
		StorageKey:  info.Key,
		ContentType: mtype.String(),
		Size:        info.Size,
		SortOrder:   int64(len(siblings)) + 1,
	})
	if err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			return 0, fmt.Errorf("record save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return 0, fmt.Errorf("record save failed: %w", err)
	}
	return record.ID, nil
}

// Delete removes one attachment: the stored object, the record, and
// the stored value referencing it. The attachment must belong to the
// given item and field.
func (s *Service) Delete(ctx context.Context, attachmentID, itemID int64, fieldID string) error {
	att, err := s.attachments.Find(ctx, attachmentID)
	if err != nil {
		return err
	}
	if att.ParentID != itemID || att.FieldID != fieldID {
		return persist.ErrAuthorizationDenied
	}

	if err := s.objects.Delete(ctx, att.StorageKey); err != nil {
		// The record and stored value still go; a stray object is
		// recoverable, a dangling reference is not.
		s.log.WithError(err).WithField("key", att.StorageKey).Warn("failed to delete stored object")
	}
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return err
	}
	return s.meta.DeleteValue(ctx, itemID, fieldID, fmt.Sprintf("%d", attachmentID))
}

// Reorder assigns 1-based sort keys following the given id order. Ids
// not belonging to the item's field are skipped.
func (s *Service) Reorder(ctx context.Context, itemID int64, fieldID string, ids []int64) error {
	owned, err := s.attachments.ListForField(ctx, itemID, fieldID)
	if err != nil {
		return err
	}
	ownedSet := make(map[int64]struct{}, len(owned))
	for _, att := range owned {
		ownedSet[att.ID] = struct{}{}
	}

	order := int64(0)
	for _, id := range ids {
		if _, ok := ownedSet[id]; !ok {
			continue
		}
		order++
		if err := s.attachments.SetSortOrder(ctx, id, order); err != nil {
			return err
		}
	}
	return nil
}

// ForField returns the field's attachments in sort order with
// presigned preview URLs, satisfying the renderer's attachment source.
func (s *Service) ForField(ctx context.Context, itemID int64, fieldID string) ([]render.Attachment, error) {
	records, err := s.attachments.ListForField(ctx, itemID, fieldID)
	if err != nil {
		return nil, err
	}

	out := make([]render.Attachment, 0, len(records))
	for _, att := range records {
		url, err := s.objects.PresignGet(ctx, att.StorageKey, s.presignExpiry)
		if err != nil {
			s.log.WithError(err).WithField("key", att.StorageKey).Warn("failed to presign attachment url")
		}
		out = append(out, render.Attachment{
			ID:          att.ID,
			ParentID:    att.ParentID,
			FieldID:     att.FieldID,
			Filename:    att.Filename,
			URL:         url,
			ContentType: att.ContentType,
			SortOrder:   int(att.SortOrder),
		})
	}
	return out, nil
}
