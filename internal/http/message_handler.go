package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/placement-portal/internal/application"
)

type messageService interface {
	Submit(ctx context.Context, input application.MessageInput) (application.Message, error)
	List(ctx context.Context, principal application.Principal) ([]application.Message, error)
}

// MessageHandler serves the contact form.
type MessageHandler struct {
	service   messageService
	responder responder
	logger    *slog.Logger
}

func NewMessageHandler(service messageService, logger *slog.Logger) *MessageHandler {
	base := defaultLogger(logger)
	return &MessageHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MessageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MessageHandler", operation, attrs...)
}

func (h *MessageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Submit", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode contact message", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	msg, err := h.service.Submit(r.Context(), application.MessageInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.log(r.Context(), "Submit").WarnContext(r.Context(), "contact message rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Submit", "message_id", msg.ID).InfoContext(r.Context(), "contact message received")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, messageResponse{Message: toMessageDTO(msg)})
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	messages, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).WarnContext(r.Context(), "message listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]messageDTO, len(messages))
	for i, msg := range messages {
		out[i] = toMessageDTO(msg)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageListResponse{Messages: out})
}

type messageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message messageDTO `json:"message"`
}

type messageListResponse struct {
	Messages []messageDTO `json:"messages"`
}
