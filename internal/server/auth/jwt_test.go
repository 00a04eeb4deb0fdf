package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
)

func newTestIssuer() *Issuer {
	return NewIssuer([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 7*24*time.Hour)
}

func TestIssueAccessToken_VerifyRoundTrip(t *testing.T) {
	t.Parallel()

	i := newTestIssuer()

	tok, err := i.IssueAccessToken("user-123")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := i.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "user-123")
	}
	if claims.Role != RoleUser {
		t.Fatalf("role mismatch: got %q want %q", claims.Role, RoleUser)
	}
}

func TestIssueRefreshToken_VerifyRoundTrip(t *testing.T) {
	t.Parallel()

	i := newTestIssuer()

	tok, err := i.IssueRefreshToken("user-123")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	claims, err := i.VerifyRefreshToken(tok)
	if err != nil {
		t.Fatalf("VerifyRefreshToken error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "user-123")
	}
}

func TestVerify_CrossSecretRejected(t *testing.T) {
	t.Parallel()

	i := newTestIssuer()

	access, err := i.IssueAccessToken("u1")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if _, err := i.VerifyRefreshToken(access); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("access token verified under refresh secret: %v", err)
	}

	refresh, err := i.IssueRefreshToken("u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	if _, err := i.VerifyAccessToken(refresh); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("refresh token verified under access secret: %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	i := NewIssuer([]byte("a"), []byte("r"), -1*time.Second, -1*time.Second)

	tok, err := i.IssueAccessToken("u1")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	_, err = i.VerifyAccessToken(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestVerify_MalformedString(t *testing.T) {
	t.Parallel()

	i := newTestIssuer()

	_, err := i.VerifyAccessToken("not.a.jwt")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
