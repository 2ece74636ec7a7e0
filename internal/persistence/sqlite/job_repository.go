package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/placement-portal/internal/persistence"
)

// JobRepository implements persistence.JobRepository using SQLite. Branches
// live in job_branches keyed by position.
type JobRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewJobRepository creates a SQLite job repository.
func NewJobRepository(pool *ConnectionPool) *JobRepository {
	return &JobRepository{pool: pool, mapper: NewErrorMapper(), retry: NewRetryHelper(DefaultRetryConfig())}
}

const jobColumns = `id, title, company, description, requirements, salary, location, deadline, min_cgpa, posted_by, created_at`

// CreateJob inserts a job and its branches in one transaction.
func (r *JobRepository) CreateJob(ctx context.Context, job persistence.Job) error {
	if job.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`) VALUES (`+placeholders(11)+`)`,
				job.ID,
				job.Title,
				job.Company,
				job.Description,
				job.Requirements,
				job.Salary,
				job.Location,
				formatOptionalTime(job.Deadline),
				job.MinCGPA,
				job.PostedBy,
				formatTime(job.CreatedAt),
			)
			if err != nil {
				return err
			}
			for i, branch := range job.Branches {
				if _, err := tx.ExecContext(ctx, `INSERT INTO job_branches (job_id, position, branch) VALUES (?, ?, ?)`, job.ID, i, branch); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// GetJob retrieves a job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id string) (persistence.Job, error) {
	if id == "" {
		return persistence.Job{}, persistence.ErrNotFound
	}
	job, err := scanJob(r.pool.DB().QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err != nil {
		return persistence.Job{}, r.mapper.MapError(err)
	}
	branches, err := r.loadBranches(ctx, []string{job.ID})
	if err != nil {
		return persistence.Job{}, err
	}
	job.Branches = branches[job.ID]
	return job, nil
}

// ListJobs returns jobs matching filter, newest first.
func (r *JobRepository) ListJobs(ctx context.Context, filter persistence.JobFilter) ([]persistence.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if filter.PostedBy != "" {
		query += ` WHERE posted_by = ?`
		args = append(args, filter.PostedBy)
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var (
		jobs []persistence.Job
		ids  []string
	)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		jobs = append(jobs, job)
		ids = append(ids, job.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	branches, err := r.loadBranches(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		jobs[i].Branches = branches[jobs[i].ID]
	}
	if jobs == nil {
		jobs = []persistence.Job{}
	}
	return jobs, nil
}

// CountJobs returns the number of jobs.
func (r *JobRepository) CountJobs(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

func (r *JobRepository) loadBranches(ctx context.Context, jobIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(jobIDs))
	for i, id := range jobIDs {
		args[i] = id
	}
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT job_id, branch FROM job_branches WHERE job_id IN (`+placeholders(len(jobIDs))+`) ORDER BY job_id, position`, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var jobID, branch string
		if err := rows.Scan(&jobID, &branch); err != nil {
			return nil, r.mapper.MapError(err)
		}
		out[jobID] = append(out[jobID], branch)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

func scanJob(row rowScanner) (persistence.Job, error) {
	var (
		job       persistence.Job
		deadline  sql.NullString
		createdAt string
	)
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Company,
		&job.Description,
		&job.Requirements,
		&job.Salary,
		&job.Location,
		&deadline,
		&job.MinCGPA,
		&job.PostedBy,
		&createdAt,
	)
	if err != nil {
		return persistence.Job{}, err
	}
	if job.Deadline, err = parseOptionalTime(deadline); err != nil {
		return persistence.Job{}, err
	}
	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Job{}, err
	}
	return job, nil
}
