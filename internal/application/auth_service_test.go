package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

func fastHash(password string) (string, error) { return "hashed:" + password, nil }

func fastVerify(hash, password string) error {
	if hash != "hashed:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

func newTestAuthService(users *userRepoStub, tokens *tokenIssuerStub) *AuthService {
	now := func() time.Time { return time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC) }
	return NewAuthServiceWithLogger(users, tokens, fastHash, fastVerify, func() string { return "user-1" }, now, nil)
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("registers a student with hashed password", func(t *testing.T) {
		users := newUserRepoStub()
		svc := newTestAuthService(users, &tokenIssuerStub{})

		cgpa := 8.4
		user, err := svc.Register(context.Background(), RegisterParams{Input: RegistrationInput{
			Name: "Asha", Email: "Asha@Example.edu", Password: "secret1", Role: "student",
			Department: "CSE", RollNumber: "1RV20CS001", CGPA: &cgpa,
		}})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.ID != "user-1" || user.Role != RoleStudent || user.Email != "asha@example.edu" {
			t.Fatalf("unexpected user %+v", user)
		}
		if user.PasswordHash != "hashed:secret1" {
			t.Fatalf("expected password to be hashed, got %q", user.PasswordHash)
		}
		if len(users.created) != 1 {
			t.Fatalf("expected user to be persisted")
		}
	})

	t.Run("validates role and password", func(t *testing.T) {
		svc := newTestAuthService(newUserRepoStub(), &tokenIssuerStub{})

		_, err := svc.Register(context.Background(), RegisterParams{Input: RegistrationInput{
			Name: "X", Email: "x@example.edu", Password: "123", Role: "admin",
		}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["role"] == "" || vErr.FieldErrors["password"] == "" {
			t.Fatalf("expected role and password errors, got %v", vErr.FieldErrors)
		}
	})

	t.Run("applies per role validation", func(t *testing.T) {
		svc := newTestAuthService(newUserRepoStub(), &tokenIssuerStub{})

		_, err := svc.Register(context.Background(), RegisterParams{Input: RegistrationInput{
			Name: "Recruiter", Email: "hr@acme.test", Password: "secret1", Role: "recruiter",
		}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["company"] == "" {
			t.Fatalf("expected company error, got %v", err)
		}
	})

	t.Run("rejects duplicate email as conflict", func(t *testing.T) {
		users := newUserRepoStub(User{ID: "existing", Email: "asha@example.edu", Role: RoleOfficer})
		svc := newTestAuthService(users, &tokenIssuerStub{})

		_, err := svc.Register(context.Background(), RegisterParams{Input: RegistrationInput{
			Name: "Asha", Email: "ASHA@example.edu", Password: "secret1", Role: "officer",
		}})
		var cErr *ConflictError
		if !errors.As(err, &cErr) || cErr.Code != ConflictEmailTaken {
			t.Fatalf("expected email conflict, got %v", err)
		}
	})

	t.Run("surfaces store outages as retryable", func(t *testing.T) {
		users := newUserRepoStub()
		users.err = persistence.ErrUnavailable
		svc := newTestAuthService(users, &tokenIssuerStub{})

		_, err := svc.Register(context.Background(), RegisterParams{Input: RegistrationInput{
			Name: "Asha", Email: "asha@example.edu", Password: "secret1", Role: "officer",
		}})
		if !errors.Is(err, ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	stored := User{ID: "user-7", Name: "Officer", Email: "tpo@example.edu", PasswordHash: "hashed:pass123", Role: RoleOfficer}

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		tokens := &tokenIssuerStub{}
		svc := newTestAuthService(newUserRepoStub(stored), tokens)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: " TPO@example.edu ", Password: "pass123"})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if result.Token != "token-user-7" || result.User.ID != "user-7" {
			t.Fatalf("unexpected result %+v", result)
		}
		if len(tokens.issued) != 1 || tokens.issued[0].Role != RoleOfficer || tokens.issued[0].Name != "Officer" {
			t.Fatalf("expected token subject to carry id, role and name, got %+v", tokens.issued)
		}
	})

	t.Run("rejects wrong password and unknown email alike", func(t *testing.T) {
		svc := newTestAuthService(newUserRepoStub(stored), &tokenIssuerStub{})

		for _, params := range []AuthenticateParams{
			{Email: "tpo@example.edu", Password: "wrong"},
			{Email: "nobody@example.edu", Password: "pass123"},
			{Email: "", Password: ""},
		} {
			if _, err := svc.Authenticate(context.Background(), params); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials for %+v, got %v", params, err)
			}
		}
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Parallel()

	stored := User{ID: "user-7", Name: "Officer", Email: "tpo@example.edu", Role: RoleOfficer}

	t.Run("resolves the stored user", func(t *testing.T) {
		tokens := &tokenIssuerStub{parsed: TokenSubject{UserID: "user-7", Role: RoleStudent}}
		svc := newTestAuthService(newUserRepoStub(stored), tokens)

		principal, err := svc.ValidateToken(context.Background(), "abc")
		if err != nil {
			t.Fatalf("ValidateToken failed: %v", err)
		}
		if principal.UserID != "user-7" || principal.Role != RoleOfficer {
			t.Fatalf("expected role from the stored user, got %+v", principal)
		}
	})

	t.Run("rejects invalid tokens", func(t *testing.T) {
		svc := newTestAuthService(newUserRepoStub(stored), &tokenIssuerStub{err: errors.New("expired")})
		if _, err := svc.ValidateToken(context.Background(), "abc"); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
		if _, err := svc.ValidateToken(context.Background(), "  "); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated for blank token, got %v", err)
		}
	})

	t.Run("rejects tokens of deleted users", func(t *testing.T) {
		tokens := &tokenIssuerStub{parsed: TokenSubject{UserID: "gone", Role: RoleStudent}}
		svc := newTestAuthService(newUserRepoStub(stored), tokens)
		if _, err := svc.ValidateToken(context.Background(), "abc"); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}
