package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/placement-portal/internal/application"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndParseToken(t *testing.T) {
	now := time.Date(2025, time.August, 4, 10, 0, 0, 0, time.UTC)
	issuer, err := NewJWTIssuer("s3cret", time.Hour, fixedNow(now))
	if err != nil {
		t.Fatalf("NewJWTIssuer failed: %v", err)
	}

	token, expiresAt, err := issuer.IssueToken(application.TokenSubject{UserID: "u-1", Role: application.RoleOfficer, Name: "Priya"})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expiresAt = %v", expiresAt)
	}

	subject, err := issuer.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if subject.UserID != "u-1" || subject.Role != application.RoleOfficer || subject.Name != "Priya" {
		t.Fatalf("unexpected subject %+v", subject)
	}
}

func TestParseTokenRejections(t *testing.T) {
	now := time.Date(2025, time.August, 4, 10, 0, 0, 0, time.UTC)
	issuer, err := NewJWTIssuer("s3cret", time.Hour, fixedNow(now))
	if err != nil {
		t.Fatalf("NewJWTIssuer failed: %v", err)
	}
	valid, _, err := issuer.IssueToken(application.TokenSubject{UserID: "u-1", Role: application.RoleStudent})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	later, _ := NewJWTIssuer("s3cret", time.Hour, fixedNow(now.Add(2*time.Hour)))
	otherKey, _ := NewJWTIssuer("different", time.Hour, fixedNow(now))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "student", RegisteredClaims: jwt.RegisteredClaims{
		Issuer: issuerName, Subject: "u-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		Issuer: issuerName, Subject: "u-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	cases := []struct {
		name   string
		parser *JWTIssuer
		token  string
	}{
		{"expired", later, valid},
		{"wrong key", otherKey, valid},
		{"alg none", issuer, unsigned},
		{"unknown role", issuer, badRole},
		{"garbage", issuer, "not.a.token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.parser.ParseToken(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewJWTIssuerRequiresSecret(t *testing.T) {
	if _, err := NewJWTIssuer("  ", 0, nil); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
	issuer, err := NewJWTIssuer("k", 0, nil)
	if err != nil {
		t.Fatalf("NewJWTIssuer failed: %v", err)
	}
	if issuer.ttl != DefaultTokenTTL {
		t.Fatalf("ttl = %v, want default", issuer.ttl)
	}
}
