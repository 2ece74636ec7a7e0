package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/placement-portal/internal/branch"
)

// JobFilter narrows job listings. Zero fields do not restrict.
type JobFilter struct {
	PostedBy string
}

// JobRepository captures the persistence operations on jobs.
type JobRepository interface {
	CreateJob(ctx context.Context, job Job) (Job, error)
	GetJob(ctx context.Context, id string) (Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]Job, error)
	CountJobs(ctx context.Context) (int, error)
}

// JobService posts and lists job openings.
type JobService struct {
	jobs        JobRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewJobService constructs a JobService.
func NewJobService(jobs JobRepository, idGenerator func() string, now func() time.Time) *JobService {
	return NewJobServiceWithLogger(jobs, idGenerator, now, nil)
}

// NewJobServiceWithLogger constructs a JobService with a specified logger.
func NewJobServiceWithLogger(jobs JobRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *JobService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &JobService{jobs: jobs, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *JobService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "JobService", operation, attrs...)
}

// CreateJob validates and stores a new job posted by an officer.
func (s *JobService) CreateJob(ctx context.Context, params CreateJobParams) (job Job, err error) {
	if s == nil {
		err = fmt.Errorf("JobService is nil")
		return
	}
	if s.jobs == nil {
		err = fmt.Errorf("job repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateJob", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create job", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("job_id", job.ID).InfoContext(ctx, "job created")
	}()

	if err = Authorize(params.Principal, ActionCreateJob); err != nil {
		return
	}

	input := normalizeJobInput(params.Input)
	if vErr := validateJobInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	candidate := Job{
		ID:           s.idGenerator(),
		Title:        input.Title,
		Company:      input.Company,
		Description:  input.Description,
		Requirements: input.Requirements,
		Salary:       input.Salary,
		SalaryLPA:    ParseSalaryLPA(input.Salary),
		Location:     input.Location,
		Deadline:     input.Deadline,
		MinCGPA:      input.MinCGPA,
		Branches:     input.Branches,
		PostedBy:     params.Principal.UserID,
		CreatedAt:    s.now(),
	}

	job, err = s.jobs.CreateJob(ctx, candidate)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	job = withSalaryLPA(job)
	return
}

// ListJobs returns every job, newest first.
func (s *JobService) ListJobs(ctx context.Context, principal Principal, filter JobFilter) ([]Job, error) {
	if s == nil || s.jobs == nil {
		return nil, fmt.Errorf("job service not configured")
	}
	if err := Authorize(principal, ActionListJobs); err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// ListOwnJobs returns the jobs posted by the calling officer.
func (s *JobService) ListOwnJobs(ctx context.Context, principal Principal) ([]Job, error) {
	if s == nil || s.jobs == nil {
		return nil, fmt.Errorf("job service not configured")
	}
	if err := Authorize(principal, ActionCreateJob); err != nil {
		return nil, err
	}
	return s.list(ctx, JobFilter{PostedBy: principal.UserID})
}

// GetJob returns a single job. It is available without authentication.
func (s *JobService) GetJob(ctx context.Context, id string) (Job, error) {
	if s == nil || s.jobs == nil {
		return Job{}, fmt.Errorf("job service not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Job{}, ErrNotFound
	}
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		s.loggerWith(ctx, "GetJob", "job_id", id).DebugContext(ctx, "job lookup failed", "error", err, "error_kind", ErrorKind(err))
		return Job{}, err
	}
	return withSalaryLPA(job), nil
}

func (s *JobService) list(ctx context.Context, filter JobFilter) ([]Job, error) {
	jobs, err := s.jobs.ListJobs(ctx, filter)
	if err != nil {
		err = mapRepoError(err)
		s.loggerWith(ctx, "ListJobs").ErrorContext(ctx, "failed to list jobs", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	for i := range jobs {
		jobs[i] = withSalaryLPA(jobs[i])
	}
	sortJobsNewestFirst(jobs)
	return jobs, nil
}

func sortJobsNewestFirst(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

func withSalaryLPA(job Job) Job {
	if job.SalaryLPA == 0 {
		job.SalaryLPA = ParseSalaryLPA(job.Salary)
	}
	return job
}

func normalizeJobInput(input JobInput) JobInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Company = strings.TrimSpace(input.Company)
	input.Description = strings.TrimSpace(input.Description)
	input.Requirements = strings.TrimSpace(input.Requirements)
	input.Salary = strings.TrimSpace(input.Salary)
	input.Location = strings.TrimSpace(input.Location)

	seen := make(map[string]struct{}, len(input.Branches))
	branches := make([]string, 0, len(input.Branches))
	for _, raw := range input.Branches {
		name := branch.Normalize(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		branches = append(branches, name)
	}
	input.Branches = branches
	return input
}

func validateJobInput(input JobInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	if input.Company == "" {
		vErr.add("company", "company is required")
	}
	if input.Description == "" {
		vErr.add("description", "description is required")
	}
	if !validCGPA(input.MinCGPA) {
		vErr.add("minCGPA", "minimum cgpa must be between 0 and 10")
	}
	return vErr
}
