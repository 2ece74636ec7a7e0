package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// UserRepository captures the persistence operations on accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
}

// TokenSubject is the identity carried by an access token.
type TokenSubject struct {
	UserID string
	Role   Role
	Name   string
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	IssueToken(subject TokenSubject) (string, time.Time, error)
	ParseToken(token string) (TokenSubject, error)
}

// AuthService coordinates registration, login and token validation.
type AuthService struct {
	users          UserRepository
	tokens         TokenIssuer
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	idGenerator    func() string
	now            func() time.Time
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users UserRepository, tokens TokenIssuer, idGenerator func() string, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(users, tokens, nil, nil, idGenerator, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
// Nil hash and verify functions default to bcrypt.
func NewAuthServiceWithLogger(users UserRepository, tokens TokenIssuer, hash PasswordHasher, verify PasswordVerifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if hash == nil {
		hash = HashPassword
	}
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:          users,
		tokens:         tokens,
		hashPassword:   hash,
		verifyPassword: verify,
		idGenerator:    idGenerator,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register validates a sign up request and stores the new account.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	input := params.Input
	email := normalizeEmail(input.Email)
	logger := s.loggerWith(ctx, "Register", "email", email, "role", strings.TrimSpace(input.Role))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	vErr := &ValidationError{}
	role, ok := ParseRole(input.Role)
	if !ok {
		vErr.add("role", "role must be one of student, officer, recruiter")
	}
	if len(input.Password) < MinPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, lookupErr := s.users.GetUserByEmail(ctx, email); lookupErr == nil {
		err = newConflict(ConflictEmailTaken, "email already registered")
		return
	} else if mapped := mapRepoError(lookupErr); !errors.Is(mapped, ErrNotFound) {
		err = mapped
		return
	}

	var hash string
	hash, err = s.hashPassword(input.Password)
	if err != nil {
		return
	}

	acct := Account{
		ID:           s.idGenerator(),
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		Phone:        input.Phone,
		CreatedAt:    s.now(),
	}
	switch role {
	case RoleStudent:
		user, err = NewStudent(acct, StudentProfile{Department: input.Department, RollNumber: input.RollNumber, CGPA: input.CGPA})
	case RoleRecruiter:
		user, err = NewRecruiter(acct, RecruiterProfile{Company: input.Company})
	default:
		user, err = NewOfficer(acct)
	}
	if err != nil {
		return
	}

	var persisted User
	persisted, err = s.users.CreateUser(ctx, user)
	if err != nil {
		if isDuplicate(err) {
			err = newConflict(ConflictEmailTaken, "email already registered")
			return
		}
		err = mapRepoError(err)
		return
	}

	user = persisted
	return
}

// Authenticate validates credentials and issues an access token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	email := normalizeEmail(params.Email)
	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var user User
	user, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		err = mapRepoError(err)
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(user.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	var (
		token     string
		expiresAt time.Time
	)
	token, expiresAt, err = s.tokens.IssueToken(TokenSubject{UserID: user.ID, Role: user.Role, Name: user.Name})
	if err != nil {
		err = fmt.Errorf("issue token: %w", err)
		return
	}

	result = AuthenticateResult{User: user, Token: token, ExpiresAt: expiresAt}
	return
}

// ValidateToken resolves a bearer token to the principal it was issued for.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.tokens == nil {
		return Principal{}, fmt.Errorf("auth service not configured")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}

	subject, err := s.tokens.ParseToken(token)
	if err != nil {
		s.loggerWith(ctx, "ValidateToken").DebugContext(ctx, "token rejected", "error", err)
		return Principal{}, ErrUnauthenticated
	}

	if s.users == nil {
		return Principal{UserID: subject.UserID, Role: subject.Role, Name: subject.Name}, nil
	}

	user, err := s.users.GetUser(ctx, subject.UserID)
	if err != nil {
		err = mapRepoError(err)
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrUnauthenticated
		}
		s.loggerWith(ctx, "ValidateToken", "user_id", subject.UserID).ErrorContext(ctx, "failed to resolve token subject", "error", err, "error_kind", ErrorKind(err))
		return Principal{}, err
	}

	return Principal{UserID: user.ID, Role: user.Role, Name: user.Name}, nil
}
