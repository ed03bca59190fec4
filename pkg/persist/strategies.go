package persist

import (
	"context"
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	"github.com/cyberwani/metabox/pkg/schema"
)

type saveStrategy func(ctx context.Context, s *Saver, field schema.FieldDefinition, sub Submission, values []string) error

func defaultStrategies() map[schema.FieldType]saveStrategy {
	return map[schema.FieldType]saveStrategy{
		schema.FieldTypeWysiwyg: wysiwygSave,
		schema.FieldTypeFile:    fileSave,
		schema.FieldTypeImage:   imageSave,
	}
}

var richTextPolicy = bluemonday.UGCPolicy()

// commonStrategy replaces the stored values wholesale: delete whatever
// is there, then write the submitted values back. An absent or empty
// submission leaves the key deleted.
func commonStrategy(ctx context.Context, s *Saver, field schema.FieldDefinition, sub Submission, values []string) error {
	if err := s.meta.Delete(ctx, sub.ItemID, field.ID); err != nil {
		return err
	}

	values = nonEmpty(values)
	if len(values) == 0 {
		return nil
	}

	if field.IsMultiple() {
		for _, value := range values {
			if err := s.meta.Add(ctx, sub.ItemID, field.ID, value); err != nil {
				return err
			}
		}
		return nil
	}
	return s.meta.Set(ctx, sub.ItemID, field.ID, values[0])
}

// wysiwygSave normalizes editor text into paragraphs and strips markup
// outside the user-generated-content policy, then stores it the common
// way.
func wysiwygSave(ctx context.Context, s *Saver, field schema.FieldDefinition, sub Submission, values []string) error {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		cleaned = append(cleaned, richTextPolicy.Sanitize(autop(value)))
	}
	return commonStrategy(ctx, s, field, sub, cleaned)
}

// fileSave sends each upload for the field to the attachment service
// and appends the resulting attachment ids to the stored values. A
// failed upload is logged and skipped; earlier stored ids and sibling
// uploads are unaffected.
func fileSave(ctx context.Context, s *Saver, field schema.FieldDefinition, sub Submission, _ []string) error {
	if s.uploads == nil {
		return nil
	}
	for _, upload := range sub.Uploads {
		if upload.Field != field.ID || upload.Filename == "" || upload.Size == 0 {
			continue
		}
		id, err := s.uploads.Upload(ctx, sub.ItemID, field.ID, upload.Filename, upload.Size, upload.Content)
		if err != nil {
			uploadErr := &UploadError{Field: field.ID, Index: upload.Index, Err: err}
			s.log.WithError(uploadErr).Warn("skipping failed upload")
			continue
		}
		if err := s.meta.Add(ctx, sub.ItemID, field.ID, strconv.FormatInt(id, 10)); err != nil {
			return err
		}
	}
	return nil
}

// imageSave stores the attachment ids carried on the hidden gallery
// inputs the common way, so ids inserted by the media picker survive
// the round trip, then appends ids for uploads on the same request.
func imageSave(ctx context.Context, s *Saver, field schema.FieldDefinition, sub Submission, values []string) error {
	if err := commonStrategy(ctx, s, field, sub, values); err != nil {
		return err
	}
	return fileSave(ctx, s, field, sub, nil)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
