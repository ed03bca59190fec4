package persist

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cyberwani/metabox/pkg/schema"
	"github.com/cyberwani/metabox/pkg/token"
)

type memoryMeta struct {
	values map[int64]map[string][]string
}

func newMemoryMeta() *memoryMeta {
	return &memoryMeta{values: make(map[int64]map[string][]string)}
}

func (m *memoryMeta) Values(_ context.Context, itemID int64, key string) ([]string, error) {
	return m.values[itemID][key], nil
}

func (m *memoryMeta) Set(_ context.Context, itemID int64, key, value string) error {
	m.ensure(itemID)[key] = []string{value}
	return nil
}

func (m *memoryMeta) Add(_ context.Context, itemID int64, key, value string) error {
	m.ensure(itemID)[key] = append(m.ensure(itemID)[key], value)
	return nil
}

func (m *memoryMeta) Delete(_ context.Context, itemID int64, key string) error {
	delete(m.ensure(itemID), key)
	return nil
}

func (m *memoryMeta) ensure(itemID int64) map[string][]string {
	if m.values[itemID] == nil {
		m.values[itemID] = make(map[string][]string)
	}
	return m.values[itemID]
}

type fakeUploader struct {
	next  int64
	calls []string
	fail  map[string]error
}

func (u *fakeUploader) Upload(_ context.Context, _ int64, fieldID, filename string, _ int64, _ io.Reader) (int64, error) {
	if err := u.fail[filename]; err != nil {
		return 0, err
	}
	u.next++
	u.calls = append(u.calls, fieldID+"/"+filename)
	return u.next, nil
}

type denyAll struct{}

func (denyAll) CanEdit(context.Context, int64, string) bool { return false }

func testBox() schema.BoxDefinition {
	return schema.Normalize(schema.BoxDefinition{
		ID:    "details",
		Pages: []string{"post", "page"},
		Fields: []schema.FieldDefinition{
			{ID: "tagline", Name: "Tagline", Type: schema.FieldTypeText},
			{ID: "tags", Name: "Tags", Type: schema.FieldTypeCheckboxList,
				Options: []schema.Option{{Key: "go"}, {Key: "php"}}},
			{ID: "body", Name: "Body", Type: schema.FieldTypeWysiwyg},
			{ID: "docs", Name: "Documents", Type: schema.FieldTypeFile},
			{ID: "gallery", Name: "Gallery", Type: schema.FieldTypeImage},
		},
	})
}

func testSubmission(svc *token.Service, itemID int64) Submission {
	return Submission{
		ItemID:   itemID,
		ItemType: "post",
		Token:    svc.Issue(token.ScopeSubmit, token.ItemSubject(itemID)),
		Values: map[string][]string{
			"item_id": {"7"},
			"tagline": {"hello"},
			"tags":    {"go", "php"},
		},
	}
}

func newTokenService() *token.Service {
	return token.NewService([]byte("test-secret"), time.Hour)
}

func TestSaveRoundTrip(t *testing.T) {
	meta := newMemoryMeta()
	svc := newTokenService()
	saver := NewSaver(meta, svc)

	if err := saver.Save(context.Background(), testBox(), testSubmission(svc, 7)); err != nil {
		t.Fatalf("save: %v", err)
	}

	if got := meta.values[7]["tagline"]; len(got) != 1 || got[0] != "hello" {
		t.Fatalf("tagline = %v", got)
	}
	if got := meta.values[7]["tags"]; len(got) != 2 || got[0] != "go" || got[1] != "php" {
		t.Fatalf("tags = %v", got)
	}
}

func TestSaveEmptyValueDeletesEntry(t *testing.T) {
	meta := newMemoryMeta()
	meta.ensure(7)["tagline"] = []string{"old"}
	svc := newTokenService()
	saver := NewSaver(meta, svc)

	sub := testSubmission(svc, 7)
	sub.Values["tagline"] = []string{""}
	if err := saver.Save(context.Background(), testBox(), sub); err != nil {
		t.Fatalf("save: %v", err)
	}

	if got, ok := meta.values[7]["tagline"]; ok {
		t.Fatalf("empty submission should delete the entry, got %v", got)
	}
}

func TestSaveGuardsAreSilent(t *testing.T) {
	svc := newTokenService()

	cases := []struct {
		name   string
		mutate func(*Submission)
		opts   []Option
	}{
		{"autosave", func(s *Submission) { s.Autosave = true }, nil},
		{"item id mismatch", func(s *Submission) { s.Values["item_id"] = []string{"8"} }, nil},
		{"item id missing", func(s *Submission) { delete(s.Values, "item_id") }, nil},
		{"unsupported page", func(s *Submission) { s.ItemType = "attachment" }, nil},
		{"bad token", func(s *Submission) { s.Token = "garbage" }, nil},
		{"wrong scope token", func(s *Submission) {
			s.Token = svc.Issue(token.ScopeDelete, token.ItemSubject(7))
		}, nil},
		{"denied actor", func(*Submission) {}, []Option{WithAuthorizer(denyAll{})}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := newMemoryMeta()
			meta.ensure(7)["tagline"] = []string{"old"}
			saver := NewSaver(meta, svc, tc.opts...)

			sub := testSubmission(svc, 7)
			tc.mutate(&sub)

			if err := saver.Save(context.Background(), testBox(), sub); err != nil {
				t.Fatalf("guard failure should be silent, got %v", err)
			}
			if got := meta.values[7]["tagline"]; len(got) != 1 || got[0] != "old" {
				t.Fatalf("stored values changed despite failed guard: %v", got)
			}
		})
	}
}

func TestSaveWysiwygSanitizes(t *testing.T) {
	meta := newMemoryMeta()
	svc := newTokenService()
	saver := NewSaver(meta, svc)

	sub := testSubmission(svc, 7)
	sub.Values["body"] = []string{"first line\n\n<script>alert(1)</script>second"}
	if err := saver.Save(context.Background(), testBox(), sub); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := meta.values[7]["body"]
	if len(got) != 1 {
		t.Fatalf("body = %v", got)
	}
	if strings.Contains(got[0], "<script>") {
		t.Fatalf("script tag survived sanitization: %q", got[0])
	}
	if !strings.Contains(got[0], "<p>first line</p>") {
		t.Fatalf("paragraph normalization missing: %q", got[0])
	}
}

func TestSaveUploadsAppendAttachmentIDs(t *testing.T) {
	meta := newMemoryMeta()
	meta.ensure(7)["docs"] = []string{"31"}
	svc := newTokenService()
	uploader := &fakeUploader{next: 40}
	saver := NewSaver(meta, svc, WithUploader(uploader))

	sub := testSubmission(svc, 7)
	sub.Uploads = []Upload{
		{Field: "docs", Index: 0, Filename: "a.pdf", Size: 10, Content: strings.NewReader("aa")},
		{Field: "docs", Index: 1, Filename: "", Size: 0},
		{Field: "other", Index: 0, Filename: "x.pdf", Size: 5, Content: strings.NewReader("x")},
		{Field: "docs", Index: 2, Filename: "b.pdf", Size: 12, Content: strings.NewReader("bb")},
	}
	if err := saver.Save(context.Background(), testBox(), sub); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := meta.values[7]["docs"]
	if len(got) != 3 || got[0] != "31" || got[1] != "41" || got[2] != "42" {
		t.Fatalf("docs = %v", got)
	}
	if len(uploader.calls) != 2 {
		t.Fatalf("uploads = %v", uploader.calls)
	}
}

func TestSaveUploadFailureSkipsOnlyThatUpload(t *testing.T) {
	meta := newMemoryMeta()
	svc := newTokenService()
	uploader := &fakeUploader{next: 50, fail: map[string]error{"bad.pdf": errors.New("disk full")}}
	saver := NewSaver(meta, svc, WithUploader(uploader))

	sub := testSubmission(svc, 7)
	sub.Uploads = []Upload{
		{Field: "docs", Index: 0, Filename: "bad.pdf", Size: 10, Content: strings.NewReader("xx")},
		{Field: "docs", Index: 1, Filename: "good.pdf", Size: 10, Content: strings.NewReader("yy")},
	}
	if err := saver.Save(context.Background(), testBox(), sub); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := meta.values[7]["docs"]
	if len(got) != 1 || got[0] != "51" {
		t.Fatalf("docs = %v", got)
	}
}

func TestSaveImagePersistsSubmittedIDs(t *testing.T) {
	meta := newMemoryMeta()
	svc := newTokenService()
	saver := NewSaver(meta, svc)

	sub := testSubmission(svc, 7)
	sub.Values["gallery"] = []string{"12", "5"}
	if err := saver.Save(context.Background(), testBox(), sub); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := meta.values[7]["gallery"]
	if len(got) != 2 || got[0] != "12" || got[1] != "5" {
		t.Fatalf("gallery = %v, want [12 5]", got)
	}
}

func TestSaveImageAppendsUploadsAfterSubmittedIDs(t *testing.T) {
	meta := newMemoryMeta()
	svc := newTokenService()
	uploader := &fakeUploader{next: 60}
	saver := NewSaver(meta, svc, WithUploader(uploader))

	sub := testSubmission(svc, 7)
	sub.Values["gallery"] = []string{"12"}
	sub.Uploads = []Upload{
		{Field: "gallery", Index: 0, Filename: "new.jpg", Size: 8, Content: strings.NewReader("img")},
	}
	if err := saver.Save(context.Background(), testBox(), sub); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := meta.values[7]["gallery"]
	if len(got) != 2 || got[0] != "12" || got[1] != "61" {
		t.Fatalf("gallery = %v, want [12 61]", got)
	}
}

func TestSaveEmptyImageSubmissionDeletesEntry(t *testing.T) {
	meta := newMemoryMeta()
	meta.ensure(7)["gallery"] = []string{"12", "5"}
	svc := newTokenService()
	saver := NewSaver(meta, svc)

	sub := testSubmission(svc, 7)
	sub.Values["gallery"] = []string{}
	if err := saver.Save(context.Background(), testBox(), sub); err != nil {
		t.Fatalf("save: %v", err)
	}

	if got, ok := meta.values[7]["gallery"]; ok {
		t.Fatalf("empty image submission should delete the entry, got %v", got)
	}
}

func TestSaveRunsNamedValidator(t *testing.T) {
	meta := newMemoryMeta()
	svc := newTokenService()

	trim := func(values, _ []string) ([]string, error) {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = strings.TrimSpace(v)
		}
		return out, nil
	}
	saver := NewSaver(meta, svc, WithValidator("trim", trim))

	box := testBox()
	box.Fields[0].Validate = "trim"
	sub := testSubmission(svc, 7)
	sub.Values["tagline"] = []string{"  spaced  "}

	if err := saver.Save(context.Background(), box, sub); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := meta.values[7]["tagline"]; len(got) != 1 || got[0] != "spaced" {
		t.Fatalf("tagline = %v", got)
	}
}

func TestSaveValidatorRejection(t *testing.T) {
	meta := newMemoryMeta()
	svc := newTokenService()

	reject := func(values, _ []string) ([]string, error) {
		return nil, &ValidationError{Field: "tagline", Reason: "must not be empty"}
	}
	saver := NewSaver(meta, svc, WithValidator("required", reject))

	box := testBox()
	box.Fields[0].Validate = "required"

	err := saver.Save(context.Background(), box, testSubmission(svc, 7))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "tagline" {
		t.Fatalf("error field = %q", vErr.Field)
	}
}

func TestAutop(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"one", "<p>one</p>"},
		{"one\ntwo", "<p>one<br />\ntwo</p>"},
		{"one\n\ntwo", "<p>one</p>\n<p>two</p>"},
		{"<ul><li>a</li></ul>", "<ul><li>a</li></ul>"},
	}
	for _, tc := range cases {
		if got := autop(tc.in); got != tc.want {
			t.Errorf("autop(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
