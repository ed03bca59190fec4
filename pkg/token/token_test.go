package token

import (
	"strings"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService([]byte("secret"), time.Minute)

	tok := svc.Issue(ScopeDelete, "42/gallery")
	if !svc.Verify(tok, ScopeDelete, "42/gallery") {
		t.Fatalf("freshly issued token did not verify")
	}
}

func TestVerifyRejectsWrongScope(t *testing.T) {
	svc := NewService([]byte("secret"), time.Minute)

	tok := svc.Issue(ScopeDelete, "42/gallery")
	if svc.Verify(tok, ScopeReorder, "42/gallery") {
		t.Fatalf("delete token verified under reorder scope")
	}
	if svc.Verify(tok, ScopeSubmit, "42/gallery") {
		t.Fatalf("delete token verified under submit scope")
	}
}

func TestVerifyRejectsWrongSubject(t *testing.T) {
	svc := NewService([]byte("secret"), time.Minute)

	tok := svc.Issue(ScopeDelete, "42/gallery")
	if svc.Verify(tok, ScopeDelete, "42/files") {
		t.Fatalf("token verified for a different subject")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewService([]byte("secret"), time.Minute)
	base := time.Now()
	svc.now = func() time.Time { return base }

	tok := svc.Issue(ScopeSubmit, "42")

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	if svc.Verify(tok, ScopeSubmit, "42") {
		t.Fatalf("expired token verified")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	svc := NewService([]byte("secret"), time.Minute)

	tok := svc.Issue(ScopeSubmit, "42")
	flip := "0"
	if strings.HasSuffix(tok, "0") {
		flip = "1"
	}
	tampered := tok[:len(tok)-1] + flip
	if svc.Verify(tampered, ScopeSubmit, "42") {
		t.Fatalf("tampered token verified")
	}
	if svc.Verify("garbage", ScopeSubmit, "42") {
		t.Fatalf("malformed token verified")
	}
}
