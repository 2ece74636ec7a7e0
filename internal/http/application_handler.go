package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/placement-portal/internal/application"
)

type applicationService interface {
	Apply(ctx context.Context, params application.ApplyParams) (application.Application, error)
	Transition(ctx context.Context, params application.TransitionParams) (application.Application, error)
	Annotate(ctx context.Context, params application.AnnotateParams) (application.Application, error)
	ListOwn(ctx context.Context, principal application.Principal) ([]application.ApplicationView, error)
	ListAll(ctx context.Context, principal application.Principal) ([]application.ApplicationView, error)
	ListForJob(ctx context.Context, principal application.Principal, jobID string) ([]application.ApplicationView, error)
	Get(ctx context.Context, principal application.Principal, id string) (application.ApplicationView, error)
}

// ApplicationHandler serves student applications and officer reviews.
type ApplicationHandler struct {
	service   applicationService
	responder responder
	logger    *slog.Logger
}

func NewApplicationHandler(service applicationService, logger *slog.Logger) *ApplicationHandler {
	base := defaultLogger(logger)
	return &ApplicationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ApplicationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ApplicationHandler", operation, attrs...)
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	jobID := r.PathValue("jobId")
	logger := h.log(r.Context(), "Apply", "principal_id", principal.UserID, "job_id", jobID)

	app, err := h.service.Apply(r.Context(), application.ApplyParams{Principal: principal, JobID: jobID})
	if err != nil {
		logger.WarnContext(r.Context(), "application rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "application submitted", "application_id", app.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, applicationResponse{Application: toApplicationDTO(app)})
}

func (h *ApplicationHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "ListOwn", func(ctx context.Context, p application.Principal) ([]application.ApplicationView, error) {
		return h.service.ListOwn(ctx, p)
	})
}

func (h *ApplicationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "ListAll", func(ctx context.Context, p application.Principal) ([]application.ApplicationView, error) {
		return h.service.ListAll(ctx, p)
	})
}

func (h *ApplicationHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	h.list(w, r, "ListForJob", func(ctx context.Context, p application.Principal) ([]application.ApplicationView, error) {
		return h.service.ListForJob(ctx, p, jobID)
	})
}

func (h *ApplicationHandler) list(w http.ResponseWriter, r *http.Request, operation string, fetch func(context.Context, application.Principal) ([]application.ApplicationView, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	views, err := fetch(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), operation, "principal_id", principal.UserID).WarnContext(r.Context(), "application listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationListResponse{Applications: toApplicationViewDTOs(views)})
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	id := r.PathValue("id")

	view, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID, "application_id", id).WarnContext(r.Context(), "application lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationResponse{Application: toApplicationViewDTO(view)})
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	id := r.PathValue("id")

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "application_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode status update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "application_id", id, "status", req.Status)

	app, err := h.service.Transition(r.Context(), application.TransitionParams{
		Principal:     principal,
		ApplicationID: id,
		Status:        req.Status,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "status update rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "application status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationResponse{Application: toApplicationDTO(app)})
}

func (h *ApplicationHandler) Annotate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	id := r.PathValue("id")

	var req notesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Annotate", "principal_id", principal.UserID, "application_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode notes", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Annotate", "principal_id", principal.UserID, "application_id", id)

	app, err := h.service.Annotate(r.Context(), application.AnnotateParams{
		Principal:     principal,
		ApplicationID: id,
		Notes:         req.Notes,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "notes update rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "application notes updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationResponse{Application: toApplicationDTO(app)})
}

type statusRequest struct {
	Status string `json:"status"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type applicationResponse struct {
	Application applicationDTO `json:"application"`
}

type applicationListResponse struct {
	Applications []applicationDTO `json:"applications"`
}
