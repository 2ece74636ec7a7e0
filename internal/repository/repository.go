// Package repository adapts persistence stores to the repository interfaces
// consumed by the application services.
package repository

import (
	"context"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/persistence"
)

// Set bundles the adapters over one store.
type Set struct {
	Users        *Users
	Jobs         *Jobs
	Applications *Applications
	Messages     *Messages
}

// NewSet wraps every repository of store.
func NewSet(store persistence.Store) Set {
	return Set{
		Users:        NewUsers(store),
		Jobs:         NewJobs(store),
		Applications: NewApplications(store),
		Messages:     NewMessages(store),
	}
}

// Users adapts persistence.UserRepository.
type Users struct {
	repo persistence.UserRepository
}

var (
	_ application.UserRepository  = (*Users)(nil)
	_ application.UserDirectory   = (*Users)(nil)
	_ application.StatsUserReader = (*Users)(nil)
)

// NewUsers wraps repo.
func NewUsers(repo persistence.UserRepository) *Users {
	return &Users{repo: repo}
}

func (a *Users) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *Users) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *Users) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

// UpdateUser keeps the stored password hash when user carries none.
func (a *Users) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	record := toPersistenceUser(user)
	if record.PasswordHash == "" {
		current, err := a.repo.GetUser(ctx, user.ID)
		if err != nil {
			return application.User{}, err
		}
		record.PasswordHash = current.PasswordHash
	}
	if err := a.repo.UpdateUser(ctx, record); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, user.ID)
}

func (a *Users) ListUsersByID(ctx context.Context, ids []string) ([]application.User, error) {
	models, err := a.repo.ListUsersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *Users) CountUsers(ctx context.Context, role application.Role) (int, error) {
	return a.repo.CountUsers(ctx, string(role))
}

// Jobs adapts persistence.JobRepository.
type Jobs struct {
	repo persistence.JobRepository
}

var _ application.JobRepository = (*Jobs)(nil)

// NewJobs wraps repo.
func NewJobs(repo persistence.JobRepository) *Jobs {
	return &Jobs{repo: repo}
}

func (a *Jobs) CreateJob(ctx context.Context, job application.Job) (application.Job, error) {
	if err := a.repo.CreateJob(ctx, toPersistenceJob(job)); err != nil {
		return application.Job{}, err
	}
	return a.GetJob(ctx, job.ID)
}

func (a *Jobs) GetJob(ctx context.Context, id string) (application.Job, error) {
	stored, err := a.repo.GetJob(ctx, id)
	if err != nil {
		return application.Job{}, err
	}
	return toApplicationJob(stored), nil
}

func (a *Jobs) ListJobs(ctx context.Context, filter application.JobFilter) ([]application.Job, error) {
	models, err := a.repo.ListJobs(ctx, persistence.JobFilter{PostedBy: filter.PostedBy})
	if err != nil {
		return nil, err
	}
	jobs := make([]application.Job, 0, len(models))
	for _, model := range models {
		jobs = append(jobs, toApplicationJob(model))
	}
	return jobs, nil
}

func (a *Jobs) CountJobs(ctx context.Context) (int, error) {
	return a.repo.CountJobs(ctx)
}

// Applications adapts persistence.ApplicationRepository.
type Applications struct {
	repo persistence.ApplicationRepository
}

var _ application.ApplicationRepository = (*Applications)(nil)

// NewApplications wraps repo.
func NewApplications(repo persistence.ApplicationRepository) *Applications {
	return &Applications{repo: repo}
}

func (a *Applications) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	if err := a.repo.CreateApplication(ctx, toPersistenceApplication(app)); err != nil {
		return application.Application{}, err
	}
	return a.GetApplication(ctx, app.ID)
}

func (a *Applications) GetApplication(ctx context.Context, id string) (application.Application, error) {
	stored, err := a.repo.GetApplication(ctx, id)
	if err != nil {
		return application.Application{}, err
	}
	return toApplicationApplication(stored), nil
}

func (a *Applications) FindApplication(ctx context.Context, studentID, jobID string) (application.Application, error) {
	stored, err := a.repo.FindApplication(ctx, studentID, jobID)
	if err != nil {
		return application.Application{}, err
	}
	return toApplicationApplication(stored), nil
}

func (a *Applications) ListApplications(ctx context.Context, filter application.ApplicationFilter) ([]application.Application, error) {
	models, err := a.repo.ListApplications(ctx, toPersistenceFilter(filter))
	if err != nil {
		return nil, err
	}
	apps := make([]application.Application, 0, len(models))
	for _, model := range models {
		apps = append(apps, toApplicationApplication(model))
	}
	return apps, nil
}

func (a *Applications) UpdateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	if err := a.repo.UpdateApplication(ctx, toPersistenceApplication(app)); err != nil {
		return application.Application{}, err
	}
	return a.GetApplication(ctx, app.ID)
}

func (a *Applications) CountApplications(ctx context.Context, filter application.ApplicationFilter) (int, error) {
	return a.repo.CountApplications(ctx, toPersistenceFilter(filter))
}

// Messages adapts persistence.MessageRepository.
type Messages struct {
	repo persistence.MessageRepository
}

var _ application.MessageRepository = (*Messages)(nil)

// NewMessages wraps repo.
func NewMessages(repo persistence.MessageRepository) *Messages {
	return &Messages{repo: repo}
}

func (a *Messages) CreateMessage(ctx context.Context, msg application.Message) (application.Message, error) {
	if err := a.repo.CreateMessage(ctx, persistence.Message(msg)); err != nil {
		return application.Message{}, err
	}
	return msg, nil
}

func (a *Messages) ListMessages(ctx context.Context) ([]application.Message, error) {
	models, err := a.repo.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	msgs := make([]application.Message, 0, len(models))
	for _, model := range models {
		msgs = append(msgs, application.Message(model))
	}
	return msgs, nil
}
