package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/logging"
	"github.com/example/placement-portal/internal/ratelimit"
)

// TokenValidator resolves a bearer token to the principal it was issued for.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (application.Principal, error)
}

// RequireAuth rejects requests without a valid token and stores the resolved
// principal in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractTokenFromRequest(r)
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, codeUnauthenticated, errMissingToken)
				return
			}

			principal, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "token rejected", "error", err, "error_kind", application.ErrorKind(err))
				responder.handleServiceError(r.Context(), w, err)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			if logger := logging.FromContext(ctx); logger != nil {
				ctx = logging.ContextWithLogger(ctx, logger.With("principal_id", principal.UserID, "role", principal.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit allows at most limit requests per window for each client address
// on the wrapped route. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, route string, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 || window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientAddress(r) + "|" + route
			allowed, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "rate limiter unavailable", "route", route, "error", err)
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Round(time.Second)/time.Second)))
				responder.writeError(r.Context(), w, http.StatusTooManyRequests, codeRateLimited,
					fmt.Errorf("too many requests, try again in %s", window))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflight requests and marks responses as readable by origin.
func CORS(origin string) func(http.Handler) http.Handler {
	if strings.TrimSpace(origin) == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
			if origin != "*" {
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger attaches a request scoped logger and logs each request's
// start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = defaultLogger(base)
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(status int) {
	if !s.wroteHeader {
		s.status = status
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
	}
	if cookie, err := r.Cookie(tokenCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func clientAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
