package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/placement-portal/internal/application"
)

type jobService interface {
	CreateJob(ctx context.Context, params application.CreateJobParams) (application.Job, error)
	ListJobs(ctx context.Context, principal application.Principal, filter application.JobFilter) ([]application.Job, error)
	ListOwnJobs(ctx context.Context, principal application.Principal) ([]application.Job, error)
	GetJob(ctx context.Context, id string) (application.Job, error)
}

// JobHandler serves job postings.
type JobHandler struct {
	service   jobService
	responder responder
	logger    *slog.Logger
}

func NewJobHandler(service jobService, logger *slog.Logger) *JobHandler {
	base := defaultLogger(logger)
	return &JobHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *JobHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "JobHandler", operation, attrs...)
}

// List returns all jobs. `?mine=true` restricts an officer to their own
// postings and `?postedBy=<id>` to another officer's.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	var (
		jobs []application.Job
		err  error
	)
	if mine, _ := strconv.ParseBool(query.Get("mine")); mine {
		jobs, err = h.service.ListOwnJobs(r.Context(), principal)
	} else {
		jobs, err = h.service.ListJobs(r.Context(), principal, application.JobFilter{
			PostedBy: strings.TrimSpace(query.Get("postedBy")),
		})
	}
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).WarnContext(r.Context(), "job listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, jobListResponse{Jobs: toJobDTOs(jobs)})
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	job, err := h.service.GetJob(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "job_id", id).WarnContext(r.Context(), "job lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, jobResponse{Job: toJobDTO(job)})
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode job request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	input, err := req.toInput()
	if err != nil {
		logger.WarnContext(r.Context(), "job request rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	job, err := h.service.CreateJob(r.Context(), application.CreateJobParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "job creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "job created", "job_id", job.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, jobResponse{Job: toJobDTO(job)})
}

type jobRequest struct {
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	Salary       string     `json:"salary"`
	Location     string     `json:"location"`
	Deadline     string     `json:"deadline"`
	MinCGPA      float64    `json:"minCGPA"`
	Branches     stringList `json:"branches"`
}

func (req jobRequest) toInput() (application.JobInput, error) {
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return application.JobInput{}, &application.ValidationError{
			FieldErrors: map[string]string{"deadline": err.Error()},
		}
	}
	return application.JobInput{
		Title:        req.Title,
		Company:      req.Company,
		Description:  req.Description,
		Requirements: req.Requirements,
		Salary:       req.Salary,
		Location:     req.Location,
		Deadline:     deadline,
		MinCGPA:      req.MinCGPA,
		Branches:     []string(req.Branches),
	}, nil
}

type jobResponse struct {
	Job jobDTO `json:"job"`
}

type jobListResponse struct {
	Jobs []jobDTO `json:"jobs"`
}
