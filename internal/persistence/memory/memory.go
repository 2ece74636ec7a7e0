// Package memory provides an in-process persistence.Store backed by maps.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/example/placement-portal/internal/persistence"
)

// Storage keeps every record in memory. It is safe for concurrent use.
type Storage struct {
	mu           sync.RWMutex
	users        map[string]persistence.User
	jobs         map[string]persistence.Job
	applications map[string]persistence.Application
	messages     map[string]persistence.Message
}

var _ persistence.Store = (*Storage)(nil)

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		users:        make(map[string]persistence.User),
		jobs:         make(map[string]persistence.Job),
		applications: make(map[string]persistence.Application),
		messages:     make(map[string]persistence.Message),
	}
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }

// Migrate is a no-op.
func (s *Storage) Migrate(context.Context) error { return nil }

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error { return nil }

// --- UserRepository implementation ---

// CreateUser stores a new user.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("memory: user %s: %w", user.ID, persistence.ErrDuplicate)
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	user.Email = normalizeEmail(user.Email)
	s.users[user.ID] = cloneUser(user)
	return nil
}

// UpdateUser replaces an existing user.
func (s *Storage) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	user.Email = normalizeEmail(user.Email)
	s.users[user.ID] = cloneUser(user)
	return nil
}

// GetUser retrieves a user by ID.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return cloneUser(user), nil
}

// GetUserByEmail retrieves a user by email address, ignoring case.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := normalizeEmail(email)
	for _, user := range s.users {
		if user.Email == lower {
			return cloneUser(user), nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsersByID returns the users that exist among ids, in request order.
func (s *Storage) ListUsersByID(ctx context.Context, ids []string) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if user, ok := s.users[id]; ok {
			users = append(users, cloneUser(user))
		}
	}
	return users, nil
}

// CountUsers counts users with role, or every user when role is empty.
func (s *Storage) CountUsers(ctx context.Context, role string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if role == "" {
		return len(s.users), nil
	}
	count := 0
	for _, user := range s.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *Storage) ensureUniqueEmailLocked(id, email string) error {
	lower := normalizeEmail(email)
	for existingID, user := range s.users {
		if existingID == id {
			continue
		}
		if user.Email == lower {
			return fmt.Errorf("memory: email %s: %w", email, persistence.ErrDuplicate)
		}
	}
	return nil
}

// --- JobRepository implementation ---

// CreateJob stores a new job.
func (s *Storage) CreateJob(ctx context.Context, job persistence.Job) error {
	if job.ID == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("memory: job %s: %w", job.ID, persistence.ErrDuplicate)
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

// GetJob retrieves a job by ID.
func (s *Storage) GetJob(ctx context.Context, id string) (persistence.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return persistence.Job{}, persistence.ErrNotFound
	}
	return cloneJob(job), nil
}

// ListJobs returns jobs matching filter, newest first.
func (s *Storage) ListJobs(ctx context.Context, filter persistence.JobFilter) ([]persistence.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]persistence.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.PostedBy != "" && job.PostedBy != filter.PostedBy {
			continue
		}
		jobs = append(jobs, cloneJob(job))
	}

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// CountJobs returns the number of jobs.
func (s *Storage) CountJobs(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs), nil
}

// --- ApplicationRepository implementation ---

// CreateApplication stores a new application, enforcing one per student and job.
func (s *Storage) CreateApplication(ctx context.Context, app persistence.Application) error {
	if app.ID == "" || app.StudentID == "" || app.JobID == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[app.ID]; ok {
		return fmt.Errorf("memory: application %s: %w", app.ID, persistence.ErrDuplicate)
	}
	for _, existing := range s.applications {
		if existing.StudentID == app.StudentID && existing.JobID == app.JobID {
			return fmt.Errorf("memory: student %s already applied to %s: %w", app.StudentID, app.JobID, persistence.ErrDuplicate)
		}
	}
	s.applications[app.ID] = cloneApplication(app)
	return nil
}

// UpdateApplication replaces an existing application.
func (s *Storage) UpdateApplication(ctx context.Context, app persistence.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[app.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.applications[app.ID] = cloneApplication(app)
	return nil
}

// GetApplication retrieves an application by ID.
func (s *Storage) GetApplication(ctx context.Context, id string) (persistence.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return persistence.Application{}, persistence.ErrNotFound
	}
	return cloneApplication(app), nil
}

// FindApplication retrieves the application of a student to a job.
func (s *Storage) FindApplication(ctx context.Context, studentID, jobID string) (persistence.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, app := range s.applications {
		if app.StudentID == studentID && app.JobID == jobID {
			return cloneApplication(app), nil
		}
	}
	return persistence.Application{}, persistence.ErrNotFound
}

// ListApplications returns applications matching filter, newest first.
func (s *Storage) ListApplications(ctx context.Context, filter persistence.ApplicationFilter) ([]persistence.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := s.filterApplicationsLocked(filter)
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].AppliedAt.Equal(apps[j].AppliedAt) {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
	return apps, nil
}

// CountApplications counts applications matching filter.
func (s *Storage) CountApplications(ctx context.Context, filter persistence.ApplicationFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterApplicationsLocked(filter)), nil
}

func (s *Storage) filterApplicationsLocked(filter persistence.ApplicationFilter) []persistence.Application {
	var jobs map[string]struct{}
	if len(filter.JobIDs) > 0 {
		jobs = make(map[string]struct{}, len(filter.JobIDs))
		for _, id := range filter.JobIDs {
			jobs[id] = struct{}{}
		}
	}

	apps := make([]persistence.Application, 0, len(s.applications))
	for _, app := range s.applications {
		if filter.StudentID != "" && app.StudentID != filter.StudentID {
			continue
		}
		if jobs != nil {
			if _, ok := jobs[app.JobID]; !ok {
				continue
			}
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		apps = append(apps, cloneApplication(app))
	}
	return apps
}

// --- MessageRepository implementation ---

// CreateMessage stores a contact message.
func (s *Storage) CreateMessage(ctx context.Context, msg persistence.Message) error {
	if msg.ID == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[msg.ID]; ok {
		return fmt.Errorf("memory: message %s: %w", msg.ID, persistence.ErrDuplicate)
	}
	s.messages[msg.ID] = msg
	return nil
}

// ListMessages returns every message, newest first.
func (s *Storage) ListMessages(ctx context.Context) ([]persistence.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]persistence.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneUser(user persistence.User) persistence.User {
	user.CGPA = persistence.CloneFloat(user.CGPA)
	user.ResumeUploadedAt = persistence.CloneTime(user.ResumeUploadedAt)
	return user
}

func cloneJob(job persistence.Job) persistence.Job {
	job.Deadline = persistence.CloneTime(job.Deadline)
	if job.Branches != nil {
		job.Branches = append([]string(nil), job.Branches...)
	}
	return job
}

func cloneApplication(app persistence.Application) persistence.Application {
	app.ShortlistedAt = persistence.CloneTime(app.ShortlistedAt)
	app.InterviewedAt = persistence.CloneTime(app.InterviewedAt)
	app.OfferedAt = persistence.CloneTime(app.OfferedAt)
	app.RejectedAt = persistence.CloneTime(app.RejectedAt)
	return app
}
