package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/placement-portal/internal/application"
)

type profileService interface {
	GetProfile(ctx context.Context, principal application.Principal) (application.User, error)
	UpdateProfile(ctx context.Context, params application.UpdateProfileParams) (application.User, error)
	AttachResume(ctx context.Context, params application.AttachResumeParams) (application.User, error)
}

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	user, err := h.service.GetProfile(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Me", "principal_id", principal.UserID).WarnContext(r.Context(), "profile lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode profile update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID)

	user, err := h.service.UpdateProfile(r.Context(), application.UpdateProfileParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "profile update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

func (h *ProfileHandler) AttachResume(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req resumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "AttachResume", "principal_id", principal.UserID, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode resume metadata", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AttachResume", "principal_id", principal.UserID, "filename", req.Filename)

	user, err := h.service.AttachResume(r.Context(), application.AttachResumeParams{
		Principal: principal,
		Input: application.ResumeInput{
			Filename: req.Filename,
			Path:     req.Path,
			MimeType: req.MimeType,
			Size:     req.Size,
		},
	})
	if err != nil {
		logger.WarnContext(r.Context(), "resume rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "resume attached")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

// profileRequest fields are optional; absent fields keep their stored value.
type profileRequest struct {
	Name       *string  `json:"name"`
	Phone      *string  `json:"phone"`
	Department *string  `json:"department"`
	RollNumber *string  `json:"rollNumber"`
	CGPA       *float64 `json:"cgpa"`
	Company    *string  `json:"company"`
}

func (req profileRequest) toInput() application.ProfileInput {
	return application.ProfileInput{
		Name:       req.Name,
		Phone:      req.Phone,
		Department: req.Department,
		RollNumber: req.RollNumber,
		CGPA:       req.CGPA,
		Company:    req.Company,
	}
}

type resumeRequest struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}
