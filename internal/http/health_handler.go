package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	store     Pinger
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewHealthHandler(store Pinger, now func() time.Time, logger *slog.Logger) *HealthHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &HealthHandler{store: store, now: now, responder: newResponder(base), logger: base}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Store: "ok", Time: formatTime(h.now())}
	status := http.StatusOK

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			handlerLogger(r.Context(), h.logger, "HealthHandler", "Check").WarnContext(r.Context(), "store ping failed", "error", err)
			resp.Status = "degraded"
			resp.Store = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	h.responder.writeJSON(r.Context(), w, status, resp)
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Time   string `json:"time"`
}
