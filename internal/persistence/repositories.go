package persistence

import "context"

// UserRepository stores accounts. Emails are unique case-insensitively.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsersByID(ctx context.Context, ids []string) ([]User, error)
	CountUsers(ctx context.Context, role string) (int, error)
}

// JobFilter narrows job queries.
type JobFilter struct {
	PostedBy string
}

// JobRepository stores job postings.
type JobRepository interface {
	CreateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]Job, error)
	CountJobs(ctx context.Context) (int, error)
}

// ApplicationFilter narrows application queries. Empty fields do not restrict.
type ApplicationFilter struct {
	StudentID string
	JobIDs    []string
	Status    string
}

// ApplicationRepository stores applications. A (StudentID, JobID) pair is
// unique; inserting a second one fails with ErrDuplicate.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app Application) error
	UpdateApplication(ctx context.Context, app Application) error
	GetApplication(ctx context.Context, id string) (Application, error)
	FindApplication(ctx context.Context, studentID, jobID string) (Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error)
	CountApplications(ctx context.Context, filter ApplicationFilter) (int, error)
}

// MessageRepository stores contact messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg Message) error
	ListMessages(ctx context.Context) ([]Message, error)
}

// Store bundles every repository behind one backend.
type Store interface {
	UserRepository
	JobRepository
	ApplicationRepository
	MessageRepository

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
