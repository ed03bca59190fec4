package persist

import (
	"context"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/cyberwani/metabox/pkg/schema"
	"github.com/cyberwani/metabox/pkg/token"
)

// MetaStore is the slice of the metadata repository the saver needs.
type MetaStore interface {
	Values(ctx context.Context, itemID int64, key string) ([]string, error)
	Set(ctx context.Context, itemID int64, key, value string) error
	Add(ctx context.Context, itemID int64, key, value string) error
	Delete(ctx context.Context, itemID int64, key string) error
}

// Uploader stores one uploaded file and returns the id of the created
// attachment record.
type Uploader interface {
	Upload(ctx context.Context, itemID int64, fieldID, filename string, size int64, content io.Reader) (int64, error)
}

// TokenVerifier checks purpose-scoped request tokens.
type TokenVerifier interface {
	Verify(tok string, scope token.Scope, subject string) bool
}

// Authorizer answers whether the acting user may edit the item. The
// host wires its own permission model in; a nil Authorizer allows
// everything.
type Authorizer interface {
	CanEdit(ctx context.Context, itemID int64, itemType string) bool
}

// Upload is one file from a multipart submission, already associated
// with its field.
type Upload struct {
	Field    string
	Index    int
	Filename string
	Size     int64
	Content  io.Reader
}

// Submission is a parsed form post for a single content item.
type Submission struct {
	ItemID   int64
	ItemType string
	Autosave bool
	Token    string
	Values   map[string][]string
	Uploads  []Upload
}

// Validator inspects the submitted values of one field before they are
// stored. It may return a sanitized replacement or a *ValidationError.
type Validator func(values, previous []string) ([]string, error)

// Option configures the Saver.
type Option func(*Saver)

// WithUploader wires the attachment upload service used by file
// fields.
func WithUploader(u Uploader) Option {
	return func(s *Saver) { s.uploads = u }
}

// WithAuthorizer wires the permission check for the final save guard.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Saver) { s.auth = a }
}

// WithLogger replaces the default logrus logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Saver) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithValidator registers a named validator that box definitions can
// reference from a field's validate key.
func WithValidator(name string, v Validator) Option {
	return func(s *Saver) { s.validators[name] = v }
}

// Saver persists box submissions field by field. It is deliberately
// non-transactional: each field write stands alone, matching the
// metadata store's own granularity.
type Saver struct {
	meta       MetaStore
	uploads    Uploader
	tokens     TokenVerifier
	auth       Authorizer
	validators map[string]Validator
	strategies map[schema.FieldType]saveStrategy
	log        logrus.FieldLogger
}

// NewSaver constructs a Saver over the given metadata store and token
// verifier.
func NewSaver(meta MetaStore, tokens TokenVerifier, options ...Option) *Saver {
	s := &Saver{
		meta:       meta,
		tokens:     tokens,
		validators: make(map[string]Validator),
		strategies: defaultStrategies(),
		log:        logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Save runs the guard chain and, when it passes, stores every field of
// the box in declaration order. A failed guard is a silent no-op: the
// submission is simply not the kind of request this box should act on.
func (s *Saver) Save(ctx context.Context, box schema.BoxDefinition, sub Submission) error {
	if !s.shouldSave(ctx, box, sub) {
		return nil
	}

	for _, field := range box.Fields {
		if err := s.saveField(ctx, field, sub); err != nil {
			return err
		}
	}
	return nil
}

func (s *Saver) shouldSave(ctx context.Context, box schema.BoxDefinition, sub Submission) bool {
	if sub.Autosave {
		return false
	}
	if ids := sub.Values["item_id"]; len(ids) == 0 || ids[0] != strconv.FormatInt(sub.ItemID, 10) {
		return false
	}
	if !box.SupportsPage(sub.ItemType) {
		return false
	}
	if s.tokens == nil || !s.tokens.Verify(sub.Token, token.ScopeSubmit, token.ItemSubject(sub.ItemID)) {
		return false
	}
	if s.auth != nil && !s.auth.CanEdit(ctx, sub.ItemID, sub.ItemType) {
		return false
	}
	return true
}

func (s *Saver) saveField(ctx context.Context, field schema.FieldDefinition, sub Submission) error {
	previous, err := s.meta.Values(ctx, sub.ItemID, field.ID)
	if err != nil {
		return err
	}

	values := sub.Values[field.ID]
	if field.Validate != "" {
		validator, ok := s.validators[field.Validate]
		if ok {
			values, err = validator(values, previous)
			if err != nil {
				return err
			}
		} else {
			s.log.WithField("validator", field.Validate).
				Warnf("field %q references an unregistered validator", field.ID)
		}
	}

	strategy, ok := s.strategies[field.Type]
	if !ok {
		strategy = commonStrategy
	}
	return strategy(ctx, s, field, sub, values)
}
