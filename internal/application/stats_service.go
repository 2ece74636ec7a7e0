package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/placement-portal/internal/stats"
	"github.com/example/placement-portal/internal/workflow"
)

// StatsUserReader is the user access needed for dashboards.
type StatsUserReader interface {
	CountUsers(ctx context.Context, role Role) (int, error)
	ListUsersByID(ctx context.Context, ids []string) ([]User, error)
}

// StatsOptions tunes the counters cache and live push.
type StatsOptions struct {
	CacheTTL     time.Duration
	PushInterval time.Duration
}

// StatsService serves placement dashboards and headline counters.
type StatsService struct {
	users       StatsUserReader
	jobs        JobRepository
	apps        ApplicationRepository
	cache       *stats.Cache
	broadcaster *stats.Broadcaster
	now         func() time.Time
	logger      *slog.Logger
}

// NewStatsService constructs a StatsService with default cache settings.
func NewStatsService(users StatsUserReader, jobs JobRepository, apps ApplicationRepository, now func() time.Time) *StatsService {
	return NewStatsServiceWithLogger(users, jobs, apps, StatsOptions{}, now, nil)
}

// NewStatsServiceWithLogger constructs a StatsService with a specified logger.
func NewStatsServiceWithLogger(users StatsUserReader, jobs JobRepository, apps ApplicationRepository, opts StatsOptions, now func() time.Time, logger *slog.Logger) *StatsService {
	if now == nil {
		now = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = stats.DefaultCacheTTL
	}
	if opts.PushInterval <= 0 {
		opts.PushInterval = stats.DefaultPushInterval
	}
	s := &StatsService{users: users, jobs: jobs, apps: apps, now: now, logger: defaultLogger(logger)}
	s.cache = stats.NewCache(s.loadCounters, now, opts.CacheTTL)
	s.broadcaster = stats.NewBroadcaster(s.cache, opts.PushInterval, now, s.logger.With("component", "stats_broadcaster"))
	return s
}

func (s *StatsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "StatsService", operation, attrs...)
}

func (s *StatsService) configured() error {
	if s == nil {
		return fmt.Errorf("StatsService is nil")
	}
	if s.users == nil || s.jobs == nil || s.apps == nil {
		return fmt.Errorf("stats service not configured")
	}
	return nil
}

// OfficerDashboard aggregates the jobs posted by the calling officer,
// including the roster of offered students.
func (s *StatsService) OfficerDashboard(ctx context.Context, principal Principal) (report stats.Report, err error) {
	if err = s.configured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "OfficerDashboard", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build dashboard", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("jobs", report.TotalJobs, "applications", report.TotalApplications).DebugContext(ctx, "dashboard built")
	}()

	if err = Authorize(principal, ActionViewDashboard); err != nil {
		return
	}
	report, err = s.aggregate(ctx, JobFilter{PostedBy: principal.UserID}, true)
	return
}

// PublicStats aggregates the whole platform without student details.
func (s *StatsService) PublicStats(ctx context.Context) (report stats.Report, err error) {
	if err = s.configured(); err != nil {
		return
	}
	report, err = s.aggregate(ctx, JobFilter{}, false)
	if err != nil {
		s.loggerWith(ctx, "PublicStats").ErrorContext(ctx, "failed to build public stats", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// Counters returns the cached platform counters. It never fails; see
// stats.Result for the fallback flags.
func (s *StatsService) Counters(ctx context.Context) stats.Result {
	return s.cache.Get(ctx)
}

// SubscribeCounters streams counter updates until cancel is called or ctx ends.
func (s *StatsService) SubscribeCounters(ctx context.Context) (<-chan stats.Update, func()) {
	return s.broadcaster.Subscribe(ctx)
}

func (s *StatsService) aggregate(ctx context.Context, filter JobFilter, roster bool) (stats.Report, error) {
	jobs, err := s.jobs.ListJobs(ctx, filter)
	if err != nil {
		return stats.Report{}, mapRepoError(err)
	}
	apps, err := s.apps.ListApplications(ctx, ApplicationFilter{})
	if err != nil {
		return stats.Report{}, mapRepoError(err)
	}
	totalStudents, err := s.users.CountUsers(ctx, RoleStudent)
	if err != nil {
		return stats.Report{}, mapRepoError(err)
	}

	scope := make(map[string]struct{}, len(jobs))
	in := stats.Input{
		Jobs:          make([]stats.Job, len(jobs)),
		Applications:  make([]stats.Application, len(apps)),
		TotalStudents: totalStudents,
		IncludeRoster: roster,
	}
	for i, job := range jobs {
		scope[job.ID] = struct{}{}
		in.Jobs[i] = stats.Job{ID: job.ID, Title: job.Title, Company: job.Company}
	}

	var offeredIDs []string
	seen := make(map[string]struct{})
	for i, app := range apps {
		in.Applications[i] = stats.Application{
			ID:        app.ID,
			StudentID: app.StudentID,
			JobID:     app.JobID,
			Status:    app.Status,
			AppliedAt: app.AppliedAt,
		}
		if app.Status != workflow.StatusOffered {
			continue
		}
		if _, ok := scope[app.JobID]; !ok {
			continue
		}
		if _, ok := seen[app.StudentID]; !ok {
			seen[app.StudentID] = struct{}{}
			offeredIDs = append(offeredIDs, app.StudentID)
		}
	}

	in.Students = make(map[string]stats.Student, len(offeredIDs))
	if len(offeredIDs) > 0 {
		students, err := s.users.ListUsersByID(ctx, offeredIDs)
		if err != nil {
			return stats.Report{}, mapRepoError(err)
		}
		for _, user := range students {
			in.Students[user.ID] = stats.Student{
				ID:         user.ID,
				Name:       user.Name,
				Email:      user.Email,
				Department: user.Department(),
				CGPA:       user.CGPA(),
			}
		}
	}

	return stats.Aggregate(in, s.now()), nil
}

func (s *StatsService) loadCounters(ctx context.Context) (stats.Counters, error) {
	if err := s.configured(); err != nil {
		return stats.Counters{}, err
	}
	students, err := s.users.CountUsers(ctx, RoleStudent)
	if err != nil {
		return stats.Counters{}, mapRepoError(err)
	}
	jobs, err := s.jobs.CountJobs(ctx)
	if err != nil {
		return stats.Counters{}, mapRepoError(err)
	}
	apps, err := s.apps.CountApplications(ctx, ApplicationFilter{})
	if err != nil {
		return stats.Counters{}, mapRepoError(err)
	}
	offers, err := s.apps.CountApplications(ctx, ApplicationFilter{Status: workflow.StatusOffered})
	if err != nil {
		return stats.Counters{}, mapRepoError(err)
	}
	return stats.Counters{Students: students, Jobs: jobs, Applications: apps, Offers: offers}, nil
}
