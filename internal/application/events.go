package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/placement-portal/internal/workflow"
)

// Event names published by ApplicationService.
const (
	EventApplicationCreated       = "application.created"
	EventApplicationStatusChanged = "application.status_changed"
)

// Event describes a change to an application.
type Event struct {
	Name           string
	OccurredAt     time.Time
	ApplicationID  string
	JobID          string
	StudentID      string
	Status         workflow.Status
	PreviousStatus workflow.Status
	ActorID        string
}

// EventPublisher delivers application events to interested parties.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

func publishEvent(ctx context.Context, publisher EventPublisher, logger *slog.Logger, event Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "event", event.Name, "error", err)
	}
}
