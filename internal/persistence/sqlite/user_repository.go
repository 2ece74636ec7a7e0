package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/placement-portal/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewUserRepository creates a SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool, mapper: NewErrorMapper(), retry: NewRetryHelper(DefaultRetryConfig())}
}

const userColumns = `id, name, email, password_hash, role, phone, department, roll_number, cgpa, company,
	resume_filename, resume_path, resume_mime_type, resume_size, resume_uploaded_at, created_at, updated_at`

// CreateUser inserts a user. The email is stored lower-cased.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (` + placeholders(17) + `)`
	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query,
			user.ID,
			user.Name,
			normalizeEmail(user.Email),
			user.PasswordHash,
			user.Role,
			user.Phone,
			user.Department,
			user.RollNumber,
			optionalFloat(user.CGPA),
			user.Company,
			user.ResumeFilename,
			user.ResumePath,
			user.ResumeMimeType,
			user.ResumeSize,
			formatOptionalTime(user.ResumeUploadedAt),
			formatTime(user.CreatedAt),
			formatTime(user.UpdatedAt),
		)
		return err
	})
}

// UpdateUser replaces every mutable column of a user.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, role = ?, phone = ?, department = ?, roll_number = ?,
			cgpa = ?, company = ?, resume_filename = ?, resume_path = ?, resume_mime_type = ?, resume_size = ?,
			resume_uploaded_at = ?, updated_at = ?
		WHERE id = ?`

	var result sql.Result
	err := r.retry.WithRetry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.DB().ExecContext(ctx, query,
			user.Name,
			normalizeEmail(user.Email),
			user.PasswordHash,
			user.Role,
			user.Phone,
			user.Department,
			user.RollNumber,
			optionalFloat(user.CGPA),
			user.Company,
			user.ResumeFilename,
			user.ResumePath,
			user.ResumeMimeType,
			user.ResumeSize,
			formatOptionalTime(user.ResumeUploadedAt),
			formatTime(user.UpdatedAt),
			user.ID,
		)
		return execErr
	})
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.pool.DB().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalized)
	return r.scanUser(row)
}

// ListUsersByID returns the users that exist among ids.
func (r *UserRepository) ListUsersByID(ctx context.Context, ids []string) ([]persistence.User, error) {
	if len(ids) == 0 {
		return []persistence.User{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	users := make([]persistence.User, 0, len(ids))
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return users, nil
}

// CountUsers counts users with role, or every user when role is empty.
func (r *UserRepository) CountUsers(ctx context.Context, role string) (int, error) {
	query := `SELECT COUNT(*) FROM users`
	var args []any
	if strings.TrimSpace(role) != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}

	var count int
	if err := r.pool.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                 persistence.User
		cgpa                 sql.NullFloat64
		uploadedAt           sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.Department,
		&user.RollNumber,
		&cgpa,
		&user.Company,
		&user.ResumeFilename,
		&user.ResumePath,
		&user.ResumeMimeType,
		&user.ResumeSize,
		&uploadedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}

	user.CGPA = floatPointer(cgpa)
	if user.ResumeUploadedAt, err = parseOptionalTime(uploadedAt); err != nil {
		return persistence.User{}, err
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
