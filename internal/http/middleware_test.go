package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/logging"
	"github.com/example/placement-portal/internal/testfixtures"
)

type validatorFunc func(ctx context.Context, token string) (application.Principal, error)

func (f validatorFunc) ValidateToken(ctx context.Context, token string) (application.Principal, error) {
	return f(ctx, token)
}

type limiterFunc func(key string) (bool, error)

func (f limiterFunc) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	return f(key)
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	student := application.Principal{UserID: "user-1", Role: application.RoleStudent, Name: "Asha"}
	validator := validatorFunc(func(_ context.Context, token string) (application.Principal, error) {
		switch token {
		case "good":
			return student, nil
		case "down":
			return application.Principal{}, fmt.Errorf("lookup: %w", application.ErrStoreUnavailable)
		default:
			return application.Principal{}, application.ErrUnauthenticated
		}
	})

	tests := []struct {
		name   string
		header string
		cookie *http.Cookie
		status int
		code   string
	}{
		{name: "missing credentials", status: http.StatusUnauthorized, code: codeUnauthenticated},
		{name: "non bearer scheme", header: "Basic Z29vZA==", status: http.StatusUnauthorized, code: codeUnauthenticated},
		{name: "rejected token", header: "Bearer expired", status: http.StatusUnauthorized, code: codeUnauthenticated},
		{name: "store unavailable", header: "Bearer down", status: http.StatusServiceUnavailable, code: codeStoreUnavailable},
		{name: "bearer header", header: "Bearer good", status: http.StatusOK},
		{name: "lower case scheme", header: "bearer good", status: http.StatusOK},
		{name: "cookie", cookie: &http.Cookie{Name: tokenCookieName, Value: "good"}, status: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got application.Principal
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAuth(validator, testfixtures.DiscardLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status != http.StatusOK {
				if body := decodeBody[errorResponse](t, rec); body.ErrorCode != tc.code {
					t.Fatalf("expected code %q, got %q", tc.code, body.ErrorCode)
				}
				return
			}
			if got != student {
				t.Fatalf("expected principal %+v in context, got %+v", student, got)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("keys by client address and route", func(t *testing.T) {
		t.Parallel()

		var keys []string
		limiter := limiterFunc(func(key string) (bool, error) {
			keys = append(keys, key)
			return true, nil
		})
		handler := RateLimit(limiter, "login", 5, time.Minute, testfixtures.DiscardLogger())(ok)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.7:51234"
		handler.ServeHTTP(httptest.NewRecorder(), req)

		forwarded := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		forwarded.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		handler.ServeHTTP(httptest.NewRecorder(), forwarded)

		if len(keys) != 2 || keys[0] != "10.0.0.7|login" || keys[1] != "203.0.113.9|login" {
			t.Fatalf("unexpected keys %v", keys)
		}
	})

	t.Run("limiter failures let requests through", func(t *testing.T) {
		t.Parallel()

		limiter := limiterFunc(func(string) (bool, error) { return true, errors.New("redis: connection refused") })
		handler := RateLimit(limiter, "contact", 1, time.Minute, testfixtures.DiscardLogger())(ok)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected request to pass, got %d", rec.Code)
		}
	})

	t.Run("disabled without a limit", func(t *testing.T) {
		t.Parallel()

		limiter := limiterFunc(func(string) (bool, error) {
			t.Fatal("limiter must not be consulted")
			return false, nil
		})
		handler := RateLimit(limiter, "register", 0, time.Minute, testfixtures.DiscardLogger())(ok)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected request to pass, got %d", rec.Code)
		}
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	called := false
	handler := CORS("https://portal.example.edu")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/jobs", nil))
	if rec.Code != http.StatusNoContent || called {
		t.Fatalf("expected preflight to be answered directly, got %d called=%v", rec.Code, called)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://portal.example.edu" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials to be allowed for a fixed origin, got %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected request to reach the handler")
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var hasLogger bool
	handler := RequestLogger(testfixtures.DiscardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasLogger = logging.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if !hasLogger {
		t.Fatal("expected a request logger in the handler context")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", rec.Code)
	}
}

func TestErrorBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &application.ValidationError{FieldErrors: map[string]string{"email": "email is required"}}, http.StatusUnprocessableEntity, codeValidation},
		{"conflict", fmt.Errorf("apply: %w", &application.ConflictError{Code: "deadline_passed", Reason: "application deadline has passed"}), http.StatusConflict, "deadline_passed"},
		{"invalid credentials", application.ErrInvalidCredentials, http.StatusUnauthorized, codeInvalidCredentials},
		{"unauthenticated", application.ErrUnauthenticated, http.StatusUnauthorized, codeUnauthenticated},
		{"unauthorized", application.ErrUnauthorized, http.StatusForbidden, codeForbidden},
		{"not found", fmt.Errorf("job: %w", application.ErrNotFound), http.StatusNotFound, codeNotFound},
		{"store unavailable", application.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			status, body := errorBody(tc.err)
			if status != tc.status || body.ErrorCode != tc.code {
				t.Fatalf("expected %d/%s, got %d/%s", tc.status, tc.code, status, body.ErrorCode)
			}
		})
	}

	_, conflict := errorBody(&application.ConflictError{Code: "cgpa_not_met", Reason: "minimum CGPA of 7.5 required"})
	if conflict.Message != "minimum CGPA of 7.5 required" {
		t.Fatalf("expected conflict reason as message, got %q", conflict.Message)
	}
}
