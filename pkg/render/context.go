package render

import (
	"context"

	"github.com/cyberwani/metabox/pkg/token"
)

// Attachment is the renderer's view of an uploaded resource parented
// to a content item. SortOrder is the explicit 1-based sort key image
// lists are ordered by.
type Attachment struct {
	ID          int64
	ParentID    int64
	FieldID     string
	Filename    string
	URL         string
	ContentType string
	SortOrder   int
}

// ValueSource reads the stored metadata values for a (content item,
// field) pair. Single-valued fields yield at most one element.
type ValueSource interface {
	Values(ctx context.Context, itemID int64, fieldID string) ([]string, error)
}

// AttachmentSource lists the attachments bound to a field, ordered by
// sort key. Implementations must not order by the stored value order.
type AttachmentSource interface {
	ForField(ctx context.Context, itemID int64, fieldID string) ([]Attachment, error)
}

// TokenIssuer mints the purpose-scoped tokens embedded in rendered
// markup (form submit, per-field delete, per-field reorder).
type TokenIssuer interface {
	Issue(scope token.Scope, subject string) string
}

// Context carries everything a render call needs about the current
// content item. It replaces the ambient globals of classic CMS code
// with explicit parameters.
type Context struct {
	ItemID      int64
	ItemType    string
	Values      ValueSource
	Attachments AttachmentSource
	Tokens      TokenIssuer
}

// fieldState is the resolved per-field input handed to strategies.
type fieldState struct {
	itemID      int64
	values      []string
	attachments []Attachment
	tokens      TokenIssuer
}

func (s fieldState) first() string {
	if len(s.values) == 0 {
		return ""
	}
	return s.values[0]
}

func (s fieldState) contains(key string) bool {
	for _, v := range s.values {
		if v == key {
			return true
		}
	}
	return false
}
