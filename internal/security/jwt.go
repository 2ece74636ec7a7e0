// Package security signs and verifies HS256 access tokens.
package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/placement-portal/internal/application"
)

// DefaultTokenTTL is the lifetime of a token when none is configured.
const DefaultTokenTTL = 24 * time.Hour

const issuerName = "placement-portal"

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("security: invalid token")

// Claims is the payload of an access token.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer implements application.TokenIssuer with an HMAC secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ application.TokenIssuer = (*JWTIssuer)(nil)

// NewJWTIssuer returns an issuer signing with secret. A non-positive ttl
// selects DefaultTokenTTL and a nil now selects time.Now.
func NewJWTIssuer(secret string, ttl time.Duration, now func() time.Time) (*JWTIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("security: jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// IssueToken signs a token for subject and returns it with its expiry.
func (p *JWTIssuer) IssueToken(subject application.TokenSubject) (string, time.Time, error) {
	if subject.UserID == "" {
		return "", time.Time{}, errors.New("security: subject is required")
	}
	issuedAt := p.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(p.ttl)

	claims := Claims{
		Role: string(subject.Role),
		Name: subject.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   subject.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("security: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies token and returns its subject.
func (p *JWTIssuer) ParseToken(token string) (application.TokenSubject, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return application.TokenSubject{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, ok := application.ParseRole(claims.Role)
	if !ok || claims.Subject == "" {
		return application.TokenSubject{}, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}
	return application.TokenSubject{UserID: claims.Subject, Role: role, Name: claims.Name}, nil
}
