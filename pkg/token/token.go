// Package token issues and verifies the short-lived signed values that
// prove authenticity of form submissions and background requests. Each
// token is bound to an action scope and a subject, so a token minted
// for deleting one attachment cannot authorize a reorder or a save.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Scope names the action a token authorizes. Scopes are deliberately
// distinct per operation; Verify never accepts a token across scopes.
type Scope string

const (
	ScopeSubmit  Scope = "submit"
	ScopeDelete  Scope = "delete"
	ScopeReorder Scope = "reorder"
)

// DefaultTTL matches the short-lived intent of admin form tokens.
const DefaultTTL = 12 * time.Hour

// Service signs tokens with an HMAC-SHA256 keyed by a caller secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds a token service. A zero ttl falls back to
// DefaultTTL.
func NewService(secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, ttl: ttl, now: time.Now}
}

// Issue mints a token for the given scope and subject. The subject is
// the identity of the thing acted on, e.g. "42/gallery" for a field of
// content item 42.
func (s *Service) Issue(scope Scope, subject string) string {
	expires := s.now().Add(s.ttl).Unix()
	return fmt.Sprintf("%d.%s", expires, s.sign(scope, subject, expires))
}

// Verify reports whether the token is authentic, unexpired, and bound
// to the given scope and subject.
func (s *Service) Verify(raw string, scope Scope, subject string) bool {
	idx := strings.IndexByte(raw, '.')
	if idx <= 0 {
		return false
	}
	expires, err := strconv.ParseInt(raw[:idx], 10, 64)
	if err != nil {
		return false
	}
	if s.now().Unix() > expires {
		return false
	}
	want := s.sign(scope, subject, expires)
	return hmac.Equal([]byte(raw[idx+1:]), []byte(want))
}

// ItemSubject is the canonical subject for tokens scoped to a whole
// content item (form submissions).
func ItemSubject(itemID int64) string {
	return strconv.FormatInt(itemID, 10)
}

// FieldSubject is the canonical subject for tokens scoped to one field
// of a content item (attachment delete, image reorder).
func FieldSubject(itemID int64, fieldID string) string {
	return strconv.FormatInt(itemID, 10) + "/" + fieldID
}

func (s *Service) sign(scope Scope, subject string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%s|%d", scope, subject, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
