package testfixtures

import (
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/repository"
	"github.com/example/placement-portal/internal/security"
	"github.com/example/placement-portal/internal/workflow"
)

// TokenSecret signs the tokens of services built by a ServiceFactory.
const TokenSecret = "test-secret"

// ServiceFactory builds application services over one store with a
// controllable clock and deterministic identifiers.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Machine     *workflow.Machine
	Events      application.EventPublisher
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory returns a factory at ReferenceTime with a discarding logger.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator(),
		Logger:      DiscardLogger(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// WithClock overrides the clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Clock = clock }
}

// WithMachine overrides the status state machine.
func WithMachine(machine *workflow.Machine) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Machine = machine }
}

// WithEvents sets the event publisher used by the application service.
func WithEvents(events application.EventPublisher) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Events = events }
}

// Services is the full set of application services over one store.
type Services struct {
	Store        persistence.Store
	Repositories repository.Set
	Tokens       *security.JWTIssuer
	Auth         *application.AuthService
	Profiles     *application.ProfileService
	Jobs         *application.JobService
	Applications *application.ApplicationService
	Stats        *application.StatsService
	Messages     *application.MessageService
}

// NewServices wires every service over store. Passwords are hashed at the
// bcrypt minimum cost to keep tests fast.
func (f *ServiceFactory) NewServices(tb testing.TB, store persistence.Store) Services {
	tb.Helper()

	now := f.Clock.NowFunc()
	tokens, err := security.NewJWTIssuer(TokenSecret, time.Hour, now)
	if err != nil {
		tb.Fatalf("token issuer: %v", err)
	}

	repos := repository.NewSet(store)
	return Services{
		Store:        store,
		Repositories: repos,
		Tokens:       tokens,
		Auth: application.NewAuthServiceWithLogger(
			repos.Users, tokens, fastHash, application.VerifyPassword, f.IDGenerator.For("user"), now, f.Logger,
		),
		Profiles: application.NewProfileServiceWithLogger(repos.Users, now, f.Logger),
		Jobs:     application.NewJobServiceWithLogger(repos.Jobs, f.IDGenerator.For("job"), now, f.Logger),
		Applications: application.NewApplicationServiceWithLogger(
			repos.Applications, repos.Jobs, repos.Users, f.Machine, f.Events, f.IDGenerator.For("app"), now, f.Logger,
		),
		Stats: application.NewStatsServiceWithLogger(
			repos.Users, repos.Jobs, repos.Applications, application.StatsOptions{}, now, f.Logger,
		),
		Messages: application.NewMessageServiceWithLogger(repos.Messages, f.IDGenerator.For("msg"), now, f.Logger),
	}
}

func fastHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash), err
}
