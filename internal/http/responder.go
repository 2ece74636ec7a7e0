package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/logging"
)

// Error codes carried by errorResponse for failures that are not conflicts.
// Conflicts carry their application conflict code instead.
const (
	codeBadRequest         = "bad_request"
	codeValidation         = "validation_failed"
	codeUnauthenticated    = "unauthenticated"
	codeInvalidCredentials = "invalid_credentials"
	codeForbidden          = "forbidden"
	codeNotFound           = "not_found"
	codeRateLimited        = "rate_limited"
	codeStoreUnavailable   = "store_unavailable"
	codeInternal           = "internal_error"
)

var (
	errBadRequestBody = errors.New("request body is malformed")
	errMissingToken   = errors.New("authentication token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes a body for a failure detected by the transport itself,
// such as an undecodable body.
func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
	}
	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: code, Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err, "error_kind", application.ErrorKind(err))
	}
	r.writeJSON(ctx, w, status, body)
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

// errorBody maps a service error to its status code and response body.
func errorBody(err error) (int, errorResponse) {
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: codeValidation,
			Message:   "one or more fields are invalid",
			Errors:    vErr.FieldErrors,
		}
	}

	var cErr *application.ConflictError
	if errors.As(err, &cErr) {
		return http.StatusConflict, errorResponse{ErrorCode: cErr.Code, Message: cErr.Error()}
	}

	switch {
	case err == nil:
		return http.StatusInternalServerError, errorResponse{ErrorCode: codeInternal, Message: "unknown error"}
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{ErrorCode: codeInvalidCredentials, Message: "email or password is incorrect"}
	case errors.Is(err, application.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{ErrorCode: codeUnauthenticated, Message: "authentication is required"}
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusForbidden, errorResponse{ErrorCode: codeForbidden, Message: "you are not allowed to perform this action"}
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, errorResponse{ErrorCode: codeNotFound, Message: "the requested resource was not found"}
	case errors.Is(err, application.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorResponse{ErrorCode: codeStoreUnavailable, Message: "the service is temporarily unavailable, try again later"}
	default:
		return http.StatusInternalServerError, errorResponse{ErrorCode: codeInternal, Message: "an internal error occurred"}
	}
}

type errorResponse struct {
	ErrorCode string            `json:"errorCode"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
