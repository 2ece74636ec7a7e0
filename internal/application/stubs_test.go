package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

type userRepoStub struct {
	mu      sync.Mutex
	users   map[string]User
	err     error
	created []User
}

func newUserRepoStub(users ...User) *userRepoStub {
	repo := &userRepoStub{users: make(map[string]User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *userRepoStub) CreateUser(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return User{}, r.err
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, persistence.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	r.created = append(r.created, user)
	return user, nil
}

func (r *userRepoStub) GetUser(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return User{}, r.err
	}
	user, ok := r.users[id]
	if !ok {
		return User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (r *userRepoStub) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return User{}, r.err
	}
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, persistence.ErrNotFound
}

func (r *userRepoStub) UpdateUser(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return User{}, r.err
	}
	if _, ok := r.users[user.ID]; !ok {
		return User{}, persistence.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *userRepoStub) ListUsersByID(ctx context.Context, ids []string) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *userRepoStub) CountUsers(ctx context.Context, role Role) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	count := 0
	for _, user := range r.users {
		if role == "" || user.Role == role {
			count++
		}
	}
	return count, nil
}

type jobRepoStub struct {
	mu   sync.Mutex
	jobs []Job
	err  error
}

func (r *jobRepoStub) CreateJob(ctx context.Context, job Job) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Job{}, r.err
	}
	r.jobs = append(r.jobs, job)
	return job, nil
}

func (r *jobRepoStub) GetJob(ctx context.Context, id string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Job{}, r.err
	}
	for _, job := range r.jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return Job{}, persistence.ErrNotFound
}

func (r *jobRepoStub) ListJobs(ctx context.Context, filter JobFilter) ([]Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []Job
	for _, job := range r.jobs {
		if filter.PostedBy != "" && job.PostedBy != filter.PostedBy {
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

func (r *jobRepoStub) CountJobs(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.jobs), nil
}

type applicationRepoStub struct {
	mu        sync.Mutex
	apps      map[string]Application
	err       error
	createErr error
	updates   int
}

func newApplicationRepoStub(apps ...Application) *applicationRepoStub {
	repo := &applicationRepoStub{apps: make(map[string]Application)}
	for _, app := range apps {
		repo.apps[app.ID] = app
	}
	return repo
}

func (r *applicationRepoStub) CreateApplication(ctx context.Context, app Application) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return Application{}, r.createErr
	}
	for _, existing := range r.apps {
		if existing.StudentID == app.StudentID && existing.JobID == app.JobID {
			return Application{}, persistence.ErrDuplicate
		}
	}
	r.apps[app.ID] = app
	return app, nil
}

func (r *applicationRepoStub) GetApplication(ctx context.Context, id string) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Application{}, r.err
	}
	app, ok := r.apps[id]
	if !ok {
		return Application{}, persistence.ErrNotFound
	}
	return app, nil
}

func (r *applicationRepoStub) FindApplication(ctx context.Context, studentID, jobID string) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Application{}, r.err
	}
	for _, app := range r.apps {
		if app.StudentID == studentID && app.JobID == jobID {
			return app, nil
		}
	}
	return Application{}, persistence.ErrNotFound
}

func (r *applicationRepoStub) ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	jobs := make(map[string]bool, len(filter.JobIDs))
	for _, id := range filter.JobIDs {
		jobs[id] = true
	}
	var out []Application
	for _, app := range r.apps {
		if filter.StudentID != "" && app.StudentID != filter.StudentID {
			continue
		}
		if len(jobs) > 0 && !jobs[app.JobID] {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

func (r *applicationRepoStub) UpdateApplication(ctx context.Context, app Application) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Application{}, r.err
	}
	if _, ok := r.apps[app.ID]; !ok {
		return Application{}, persistence.ErrNotFound
	}
	r.apps[app.ID] = app
	r.updates++
	return app, nil
}

func (r *applicationRepoStub) CountApplications(ctx context.Context, filter ApplicationFilter) (int, error) {
	apps, err := r.ListApplications(ctx, filter)
	return len(apps), err
}

func (r *applicationRepoStub) get(id string) Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apps[id]
}

type tokenIssuerStub struct {
	issued []TokenSubject
	parsed TokenSubject
	err    error
}

func (s *tokenIssuerStub) IssueToken(subject TokenSubject) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	s.issued = append(s.issued, subject)
	return "token-" + subject.UserID, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), nil
}

func (s *tokenIssuerStub) ParseToken(token string) (TokenSubject, error) {
	if s.err != nil {
		return TokenSubject{}, s.err
	}
	return s.parsed, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *eventRecorder) Publish(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}
