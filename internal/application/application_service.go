package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/placement-portal/internal/eligibility"
	"github.com/example/placement-portal/internal/workflow"
)

// ApplicationFilter narrows application queries. Empty JobIDs does not
// restrict by job.
type ApplicationFilter struct {
	StudentID string
	JobIDs    []string
	Status    workflow.Status
}

// ApplicationRepository captures the persistence operations on applications.
// CreateApplication must report a duplicate (student, job) pair with
// persistence.ErrDuplicate.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app Application) (Application, error)
	GetApplication(ctx context.Context, id string) (Application, error)
	FindApplication(ctx context.Context, studentID, jobID string) (Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error)
	UpdateApplication(ctx context.Context, app Application) (Application, error)
	CountApplications(ctx context.Context, filter ApplicationFilter) (int, error)
}

// UserDirectory resolves users referenced by applications.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
	ListUsersByID(ctx context.Context, ids []string) ([]User, error)
}

// ApplicationService runs the apply and review workflow.
type ApplicationService struct {
	apps        ApplicationRepository
	jobs        JobRepository
	users       UserDirectory
	machine     *workflow.Machine
	events      EventPublisher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewApplicationService constructs an ApplicationService with the default
// state machine and no event publisher.
func NewApplicationService(apps ApplicationRepository, jobs JobRepository, users UserDirectory, idGenerator func() string, now func() time.Time) *ApplicationService {
	return NewApplicationServiceWithLogger(apps, jobs, users, nil, nil, idGenerator, now, nil)
}

// NewApplicationServiceWithLogger constructs an ApplicationService with every
// collaborator supplied. A nil machine uses the default transition rules.
func NewApplicationServiceWithLogger(apps ApplicationRepository, jobs JobRepository, users UserDirectory, machine *workflow.Machine, events EventPublisher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ApplicationService {
	if machine == nil {
		machine = workflow.NewMachine()
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ApplicationService{
		apps:        apps,
		jobs:        jobs,
		users:       users,
		machine:     machine,
		events:      events,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ApplicationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ApplicationService", operation, attrs...)
}

func (s *ApplicationService) configured() error {
	if s == nil {
		return fmt.Errorf("ApplicationService is nil")
	}
	if s.apps == nil || s.jobs == nil || s.users == nil {
		return fmt.Errorf("application service not configured")
	}
	return nil
}

// Apply submits the calling student's application to a job.
func (s *ApplicationService) Apply(ctx context.Context, params ApplyParams) (app Application, err error) {
	if err = s.configured(); err != nil {
		return
	}

	jobID := strings.TrimSpace(params.JobID)
	logger := s.loggerWith(ctx, "Apply", "principal_id", params.Principal.UserID, "job_id", jobID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "application refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("application_id", app.ID).InfoContext(ctx, "application submitted")
	}()

	if err = Authorize(params.Principal, ActionApply); err != nil {
		return
	}
	if jobID == "" {
		err = ErrNotFound
		return
	}

	alreadyApplied := false
	if _, findErr := s.apps.FindApplication(ctx, params.Principal.UserID, jobID); findErr == nil {
		alreadyApplied = true
	} else if mapped := mapRepoError(findErr); !errors.Is(mapped, ErrNotFound) {
		err = mapped
		return
	}

	var jobRule *eligibility.Job
	if !alreadyApplied {
		job, jobErr := s.jobs.GetJob(ctx, jobID)
		switch mapped := mapRepoError(jobErr); {
		case jobErr == nil:
			jobRule = &eligibility.Job{Deadline: job.Deadline, MinCGPA: job.MinCGPA, Branches: job.Branches}
		case !errors.Is(mapped, ErrNotFound):
			err = mapped
			return
		}
	}

	var student User
	student, err = s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		err = mapRepoError(err)
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthenticated
		}
		return
	}

	now := s.now()
	decision := eligibility.Evaluate(eligibility.Input{
		Student:        eligibility.Student{CGPA: student.CGPA(), Department: student.Department()},
		Job:            jobRule,
		AlreadyApplied: alreadyApplied,
		Now:            now,
	})
	if !decision.Allowed {
		err = denialError(decision.Reason)
		return
	}

	candidate := Application{
		ID:        s.idGenerator(),
		StudentID: student.ID,
		JobID:     jobID,
		Status:    workflow.StatusApplied,
		AppliedAt: now,
		UpdatedAt: now,
	}
	app, err = s.apps.CreateApplication(ctx, candidate)
	if err != nil {
		if isDuplicate(err) {
			err = denialError(eligibility.ReasonAlreadyApplied)
			return
		}
		err = mapRepoError(err)
		return
	}

	publishEvent(ctx, s.events, logger, Event{
		Name:          EventApplicationCreated,
		OccurredAt:    now,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		StudentID:     app.StudentID,
		Status:        app.Status,
		ActorID:       params.Principal.UserID,
	})
	return
}

func denialError(reason eligibility.Reason) error {
	switch reason {
	case eligibility.ReasonJobNotFound:
		return ErrNotFound
	case eligibility.ReasonAlreadyApplied:
		return newConflict(ConflictAlreadyApplied, string(reason))
	case eligibility.ReasonDeadlinePassed:
		return newConflict(ConflictDeadlinePassed, string(reason))
	case eligibility.ReasonCGPA:
		return newConflict(ConflictCGPA, string(reason))
	case eligibility.ReasonBranch:
		return newConflict(ConflictBranch, string(reason))
	}
	return newConflict(ConflictInvalidTransition, string(reason))
}

// Transition moves an application to a new status. Officers may only review
// applications to jobs they posted. Concurrent transitions are last write wins.
func (s *ApplicationService) Transition(ctx context.Context, params TransitionParams) (app Application, err error) {
	if err = s.configured(); err != nil {
		return
	}

	appID := strings.TrimSpace(params.ApplicationID)
	logger := s.loggerWith(ctx, "Transition", "principal_id", params.Principal.UserID, "application_id", appID, "requested_status", params.Status)
	var previous workflow.Status
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change application status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("transition", workflow.Describe(previous, app.Status)).InfoContext(ctx, "application status changed")
	}()

	if err = Authorize(params.Principal, ActionTransitionApplication); err != nil {
		return
	}

	requested, ok := workflow.ParseStatus(params.Status)
	if !ok {
		err = fieldError("status", workflow.ErrInvalidStatus.Error())
		return
	}

	var current Application
	current, _, err = s.loadOwned(ctx, params.Principal, appID)
	if err != nil {
		return
	}
	previous = current.Status

	now := s.now()
	next, tErr := s.machine.Transition(current.workflowState(), requested, now)
	if tErr != nil {
		err = transitionConflict(tErr)
		return
	}
	if next.Status == current.Status {
		app = current
		return
	}

	updated := current.withWorkflowState(next)
	updated.UpdatedAt = now
	app, err = s.apps.UpdateApplication(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	publishEvent(ctx, s.events, logger, Event{
		Name:           EventApplicationStatusChanged,
		OccurredAt:     now,
		ApplicationID:  app.ID,
		JobID:          app.JobID,
		StudentID:      app.StudentID,
		Status:         app.Status,
		PreviousStatus: previous,
		ActorID:        params.Principal.UserID,
	})
	return
}

func transitionConflict(err error) error {
	switch {
	case errors.Is(err, workflow.ErrInvalidStatus):
		return fieldError("status", err.Error())
	case errors.Is(err, workflow.ErrOfferRevoked):
		return newConflict(ConflictOfferRevoked, err.Error())
	case errors.Is(err, workflow.ErrBackward):
		return newConflict(ConflictBackward, err.Error())
	case errors.Is(err, workflow.ErrTerminal):
		return newConflict(ConflictTerminal, err.Error())
	}
	return newConflict(ConflictInvalidTransition, err.Error())
}

// Annotate replaces the reviewer notes on an application.
func (s *ApplicationService) Annotate(ctx context.Context, params AnnotateParams) (app Application, err error) {
	if err = s.configured(); err != nil {
		return
	}

	appID := strings.TrimSpace(params.ApplicationID)
	logger := s.loggerWith(ctx, "Annotate", "principal_id", params.Principal.UserID, "application_id", appID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to annotate application", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "application annotated")
	}()

	if err = Authorize(params.Principal, ActionAnnotateApplication); err != nil {
		return
	}

	var current Application
	current, _, err = s.loadOwned(ctx, params.Principal, appID)
	if err != nil {
		return
	}

	current.Notes = params.Notes
	current.UpdatedAt = s.now()
	app, err = s.apps.UpdateApplication(ctx, current)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// loadOwned fetches an application whose job the officer posted. A missing
// job is reported the same way as a job owned by someone else.
func (s *ApplicationService) loadOwned(ctx context.Context, principal Principal, appID string) (Application, Job, error) {
	if appID == "" {
		return Application{}, Job{}, ErrNotFound
	}
	app, err := s.apps.GetApplication(ctx, appID)
	if err != nil {
		return Application{}, Job{}, mapRepoError(err)
	}
	job, err := s.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		if mapped := mapRepoError(err); !errors.Is(mapped, ErrNotFound) {
			return Application{}, Job{}, mapped
		}
		return Application{}, Job{}, ErrUnauthorized
	}
	if !ownsJob(principal, job) {
		return Application{}, Job{}, ErrUnauthorized
	}
	return app, job, nil
}

// ListOwn returns the calling student's applications, newest first.
func (s *ApplicationService) ListOwn(ctx context.Context, principal Principal) ([]ApplicationView, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	if err := Authorize(principal, ActionListOwnApplications); err != nil {
		return nil, err
	}
	apps, err := s.apps.ListApplications(ctx, ApplicationFilter{StudentID: principal.UserID})
	if err != nil {
		return nil, s.listFailed(ctx, "ListOwn", err)
	}
	return s.views(ctx, apps, nil)
}

// ListAll returns every application to jobs posted by the calling officer.
func (s *ApplicationService) ListAll(ctx context.Context, principal Principal) ([]ApplicationView, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	if err := Authorize(principal, ActionListAllApplications); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListJobs(ctx, JobFilter{PostedBy: principal.UserID})
	if err != nil {
		return nil, s.listFailed(ctx, "ListAll", err)
	}
	if len(jobs) == 0 {
		return []ApplicationView{}, nil
	}
	ids := make([]string, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
	}
	apps, err := s.apps.ListApplications(ctx, ApplicationFilter{JobIDs: ids})
	if err != nil {
		return nil, s.listFailed(ctx, "ListAll", err)
	}
	return s.views(ctx, apps, jobs)
}

// ListForJob returns applications to one job the calling officer posted.
func (s *ApplicationService) ListForJob(ctx context.Context, principal Principal, jobID string) ([]ApplicationView, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	if err := Authorize(principal, ActionListJobApplications); err != nil {
		return nil, err
	}
	job, err := s.jobs.GetJob(ctx, strings.TrimSpace(jobID))
	if err != nil {
		if mapped := mapRepoError(err); !errors.Is(mapped, ErrNotFound) {
			return nil, s.listFailed(ctx, "ListForJob", mapped)
		}
		return nil, ErrUnauthorized
	}
	if !ownsJob(principal, job) {
		return nil, ErrUnauthorized
	}
	apps, err := s.apps.ListApplications(ctx, ApplicationFilter{JobIDs: []string{job.ID}})
	if err != nil {
		return nil, s.listFailed(ctx, "ListForJob", err)
	}
	return s.views(ctx, apps, []Job{job})
}

// Get returns one application visible to the caller.
func (s *ApplicationService) Get(ctx context.Context, principal Principal, id string) (ApplicationView, error) {
	if err := s.configured(); err != nil {
		return ApplicationView{}, err
	}
	if err := Authorize(principal, ActionViewApplication); err != nil {
		return ApplicationView{}, err
	}
	app, err := s.apps.GetApplication(ctx, strings.TrimSpace(id))
	if err != nil {
		return ApplicationView{}, mapRepoError(err)
	}

	var jobs []Job
	var jobPtr *Job
	job, jobErr := s.jobs.GetJob(ctx, app.JobID)
	if jobErr == nil {
		jobPtr = &job
		jobs = []Job{job}
	} else if mapped := mapRepoError(jobErr); !errors.Is(mapped, ErrNotFound) {
		return ApplicationView{}, mapped
	}
	if !canViewApplication(principal, app, jobPtr) {
		return ApplicationView{}, ErrUnauthorized
	}

	views, err := s.views(ctx, []Application{app}, jobs)
	if err != nil {
		return ApplicationView{}, err
	}
	return views[0], nil
}

func (s *ApplicationService) listFailed(ctx context.Context, operation string, err error) error {
	err = mapRepoError(err)
	s.loggerWith(ctx, operation).ErrorContext(ctx, "failed to list applications", "error", err, "error_kind", ErrorKind(err))
	return err
}

// views resolves job and student summaries. Known jobs may be passed in to
// avoid a second read.
func (s *ApplicationService) views(ctx context.Context, apps []Application, known []Job) ([]ApplicationView, error) {
	jobsByID := make(map[string]Job, len(known))
	for _, job := range known {
		jobsByID[job.ID] = job
	}

	var missingJobs bool
	studentIDs := make([]string, 0, len(apps))
	seen := make(map[string]struct{}, len(apps))
	for _, app := range apps {
		if _, ok := jobsByID[app.JobID]; !ok {
			missingJobs = true
		}
		if _, ok := seen[app.StudentID]; !ok {
			seen[app.StudentID] = struct{}{}
			studentIDs = append(studentIDs, app.StudentID)
		}
	}

	if missingJobs {
		all, err := s.jobs.ListJobs(ctx, JobFilter{})
		if err != nil {
			return nil, mapRepoError(err)
		}
		for _, job := range all {
			jobsByID[job.ID] = job
		}
	}

	studentsByID := make(map[string]User, len(studentIDs))
	if len(studentIDs) > 0 {
		students, err := s.users.ListUsersByID(ctx, studentIDs)
		if err != nil {
			return nil, mapRepoError(err)
		}
		for _, user := range students {
			studentsByID[user.ID] = user
		}
	}

	views := make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		view := ApplicationView{Application: app}
		if job, ok := jobsByID[app.JobID]; ok {
			view.Job = &JobSummary{ID: job.ID, Title: job.Title, Company: job.Company, Location: job.Location, Deadline: job.Deadline}
		}
		if user, ok := studentsByID[app.StudentID]; ok {
			summary := &StudentSummary{ID: user.ID, Name: user.Name, Email: user.Email, CGPA: user.CGPA(), Department: user.Department()}
			if user.Student != nil {
				summary.RollNumber = user.Student.RollNumber
			}
			view.Student = summary
		}
		views = append(views, view)
	}
	sortViewsNewestFirst(views)
	return views, nil
}

func sortViewsNewestFirst(views []ApplicationView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].AppliedAt.After(views[j].AppliedAt)
	})
}
