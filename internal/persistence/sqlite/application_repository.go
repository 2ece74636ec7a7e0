package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

// ApplicationRepository implements persistence.ApplicationRepository using
// SQLite. The unique index on (student_id, job_id) rejects duplicates.
type ApplicationRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewApplicationRepository creates a SQLite application repository.
func NewApplicationRepository(pool *ConnectionPool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool, mapper: NewErrorMapper(), retry: NewRetryHelper(DefaultRetryConfig())}
}

const applicationColumns = `id, student_id, job_id, status, applied_at, shortlisted_at, interviewed_at, offered_at, rejected_at, notes, updated_at`

// CreateApplication inserts an application.
func (r *ApplicationRepository) CreateApplication(ctx context.Context, app persistence.Application) error {
	if app.ID == "" || app.StudentID == "" || app.JobID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`) VALUES (`+placeholders(11)+`)`,
			app.ID,
			app.StudentID,
			app.JobID,
			app.Status,
			formatTime(app.AppliedAt),
			formatOptionalTime(app.ShortlistedAt),
			formatOptionalTime(app.InterviewedAt),
			formatOptionalTime(app.OfferedAt),
			formatOptionalTime(app.RejectedAt),
			app.Notes,
			formatTime(app.UpdatedAt),
		)
		return err
	})
}

// UpdateApplication replaces the status, milestones and notes of an application.
func (r *ApplicationRepository) UpdateApplication(ctx context.Context, app persistence.Application) error {
	if app.ID == "" {
		return persistence.ErrNotFound
	}

	var result sql.Result
	err := r.retry.WithRetry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.DB().ExecContext(ctx, `
			UPDATE applications
			SET status = ?, shortlisted_at = ?, interviewed_at = ?, offered_at = ?, rejected_at = ?, notes = ?, updated_at = ?
			WHERE id = ?`,
			app.Status,
			formatOptionalTime(app.ShortlistedAt),
			formatOptionalTime(app.InterviewedAt),
			formatOptionalTime(app.OfferedAt),
			formatOptionalTime(app.RejectedAt),
			app.Notes,
			formatTime(app.UpdatedAt),
			app.ID,
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

// GetApplication retrieves an application by ID.
func (r *ApplicationRepository) GetApplication(ctx context.Context, id string) (persistence.Application, error) {
	if id == "" {
		return persistence.Application{}, persistence.ErrNotFound
	}
	app, err := scanApplication(r.pool.DB().QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id))
	if err != nil {
		return persistence.Application{}, r.mapper.MapError(err)
	}
	return app, nil
}

// FindApplication retrieves the application of a student to a job.
func (r *ApplicationRepository) FindApplication(ctx context.Context, studentID, jobID string) (persistence.Application, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE student_id = ? AND job_id = ?`, studentID, jobID)
	app, err := scanApplication(row)
	if err != nil {
		return persistence.Application{}, r.mapper.MapError(err)
	}
	return app, nil
}

// ListApplications returns applications matching filter, newest first.
func (r *ApplicationRepository) ListApplications(ctx context.Context, filter persistence.ApplicationFilter) ([]persistence.Application, error) {
	where, args := applicationWhere(filter)
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications`+where+` ORDER BY applied_at DESC, id ASC`, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	apps := []persistence.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return apps, nil
}

// CountApplications counts applications matching filter.
func (r *ApplicationRepository) CountApplications(ctx context.Context, filter persistence.ApplicationFilter) (int, error) {
	where, args := applicationWhere(filter)
	var count int
	if err := r.pool.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

func applicationWhere(filter persistence.ApplicationFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.StudentID != "" {
		clauses = append(clauses, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if len(filter.JobIDs) > 0 {
		clauses = append(clauses, "job_id IN ("+placeholders(len(filter.JobIDs))+")")
		for _, id := range filter.JobIDs {
			args = append(args, id)
		}
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanApplication(row rowScanner) (persistence.Application, error) {
	var (
		app                                        persistence.Application
		appliedAt, updatedAt                       string
		shortlisted, interviewed, offered, rejected sql.NullString
	)
	err := row.Scan(
		&app.ID,
		&app.StudentID,
		&app.JobID,
		&app.Status,
		&appliedAt,
		&shortlisted,
		&interviewed,
		&offered,
		&rejected,
		&app.Notes,
		&updatedAt,
	)
	if err != nil {
		return persistence.Application{}, err
	}
	if app.AppliedAt, err = parseTime(appliedAt); err != nil {
		return persistence.Application{}, err
	}
	if app.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Application{}, err
	}
	for _, field := range []struct {
		src sql.NullString
		dst **time.Time
	}{
		{shortlisted, &app.ShortlistedAt},
		{interviewed, &app.InterviewedAt},
		{offered, &app.OfferedAt},
		{rejected, &app.RejectedAt},
	} {
		if *field.dst, err = parseOptionalTime(field.src); err != nil {
			return persistence.Application{}, err
		}
	}
	return app, nil
}
