package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/stats"
)

type statsService interface {
	OfficerDashboard(ctx context.Context, principal application.Principal) (stats.Report, error)
	PublicStats(ctx context.Context) (stats.Report, error)
	Counters(ctx context.Context) stats.Result
	SubscribeCounters(ctx context.Context) (<-chan stats.Update, func())
}

// StatsHandler serves dashboards, headline counters and their live stream.
type StatsHandler struct {
	service   statsService
	responder responder
	logger    *slog.Logger
}

func NewStatsHandler(service statsService, logger *slog.Logger) *StatsHandler {
	base := defaultLogger(logger)
	return &StatsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *StatsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StatsHandler", operation, attrs...)
}

func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	report, err := h.service.OfficerDashboard(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Dashboard", "principal_id", principal.UserID).WarnContext(r.Context(), "dashboard failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReportDTO(report))
}

func (h *StatsHandler) Public(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	report, err := h.service.PublicStats(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReportDTO(report))
}

// Counters serves stale snapshots with 200 and flags them in the body. Only
// placeholder figures, served when nothing was ever computed, answer 500.
func (h *StatsHandler) Counters(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	result := h.service.Counters(r.Context())
	if result.Err != nil {
		h.log(r.Context(), "Counters").WarnContext(r.Context(), "serving degraded counters",
			"error", result.Err, "fallback", result.Fallback, "placeholder", result.Placeholder)
	}
	status := http.StatusOK
	if result.Placeholder {
		status = http.StatusInternalServerError
	}
	h.responder.writeJSON(r.Context(), w, status, toCountersResponse(result))
}

// Live streams counters as Server-Sent Events until the client disconnects.
func (h *StatsHandler) Live(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	logger := h.log(ctx, "Live")
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.ErrorContext(ctx, "streaming unsupported", "error", err)
		return
	}

	updates, cancel := h.service.SubscribeCounters(ctx)
	defer cancel()
	logger.InfoContext(ctx, "live stats subscriber connected")

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "live stats subscriber disconnected")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEvent(w, "stats", liveUpdate(update)); err != nil {
				logger.WarnContext(ctx, "failed to write live stats", "error", err)
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func liveUpdate(update stats.Update) countersResponse {
	resp := toCountersResponse(update.Result)
	resp.Timestamp = formatTime(update.Timestamp)
	return resp
}

func writeEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
