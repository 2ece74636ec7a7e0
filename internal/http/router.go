package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/example/placement-portal/internal/ratelimit"
)

// DefaultRateWindow is the window of the per client limit on public
// mutating routes.
const DefaultRateWindow = time.Minute

type RouterConfig struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Profiles     *ProfileHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Stats        *StatsHandler
	Messages     *MessageHandler

	// Tokens authenticates every route that needs a principal.
	Tokens TokenValidator
	// Limiter throttles registration, login and the contact form. A nil
	// limiter or a non-positive RateLimit disables throttling.
	Limiter    ratelimit.Limiter
	RateLimit  int
	RateWindow time.Duration

	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	window := cfg.RateWindow
	if window <= 0 {
		window = DefaultRateWindow
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(cfg.Tokens, cfg.Logger)(h)
	}
	limited := func(route string, h http.HandlerFunc) http.Handler {
		return RateLimit(cfg.Limiter, route, cfg.RateLimit, window, cfg.Logger)(h)
	}

	if cfg.Health != nil {
		mux.HandleFunc("GET /health", cfg.Health.Check)
	}

	if cfg.Auth != nil {
		mux.Handle("POST /api/auth/register", limited("register", cfg.Auth.Register))
		mux.Handle("POST /api/auth/login", limited("login", cfg.Auth.Login))
	}

	if cfg.Profiles != nil {
		mux.Handle("GET /api/auth/me", authed(cfg.Profiles.Me))
		mux.Handle("PUT /api/auth/profile", authed(cfg.Profiles.Update))
		mux.Handle("PUT /api/auth/resume", authed(cfg.Profiles.AttachResume))
	}

	if cfg.Jobs != nil {
		mux.Handle("GET /api/jobs", authed(cfg.Jobs.List))
		mux.Handle("POST /api/jobs", authed(cfg.Jobs.Create))
		mux.HandleFunc("GET /api/jobs/{id}", cfg.Jobs.Get)
	}

	if cfg.Applications != nil {
		mux.Handle("POST /api/applications/{jobId}", authed(cfg.Applications.Apply))
		mux.Handle("GET /api/applications", authed(cfg.Applications.ListOwn))
		mux.Handle("GET /api/applications/all", authed(cfg.Applications.ListAll))
		mux.Handle("GET /api/applications/job/{jobId}", authed(cfg.Applications.ListForJob))
		mux.Handle("GET /api/applications/{id}", authed(cfg.Applications.Get))
		mux.Handle("PATCH /api/applications/{id}/status", authed(cfg.Applications.UpdateStatus))
		mux.Handle("POST /api/applications/{id}/notes", authed(cfg.Applications.Annotate))
	}

	if cfg.Stats != nil {
		mux.Handle("GET /api/applications/stats", authed(cfg.Stats.Dashboard))
		mux.HandleFunc("GET /api/stats", cfg.Stats.Counters)
		mux.HandleFunc("GET /api/stats/live", cfg.Stats.Live)
		mux.HandleFunc("GET /api/public/stats", cfg.Stats.Public)
	}

	if cfg.Messages != nil {
		mux.Handle("POST /api/contact", limited("contact", cfg.Messages.Submit))
		mux.Handle("GET /api/messages", authed(cfg.Messages.List))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
