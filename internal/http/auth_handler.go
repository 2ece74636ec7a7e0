package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/placement-portal/internal/application"
)

const tokenCookieName = "token"

type authService interface {
	Register(ctx context.Context, params application.RegisterParams) (application.User, error)
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
}

// AuthHandler serves account creation and login.
type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode registration", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Register", "role", req.Role)

	user, err := h.service.Register(r.Context(), application.RegisterParams{Input: req.toInput()})
	if err != nil {
		logger.WarnContext(r.Context(), "registration rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, userResponse{User: toUserDTO(user)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "Login", "email", email)

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "authentication rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	setTokenCookie(w, result.Token, result.ExpiresAt)
	logger.InfoContext(r.Context(), "user authenticated", "user_id", result.User.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: formatTime(result.ExpiresAt),
		User:      toUserDTO(result.User),
	})
}

type registerRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Role       string   `json:"role"`
	Department string   `json:"department"`
	RollNumber string   `json:"rollNumber"`
	CGPA       *float64 `json:"cgpa"`
	Phone      string   `json:"phone"`
	Company    string   `json:"company"`
}

func (req registerRequest) toInput() application.RegistrationInput {
	return application.RegistrationInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		RollNumber: req.RollNumber,
		CGPA:       req.CGPA,
		Phone:      req.Phone,
		Company:    req.Company,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      userDTO `json:"user"`
}

type userResponse struct {
	User userDTO `json:"user"`
}

func setTokenCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}
