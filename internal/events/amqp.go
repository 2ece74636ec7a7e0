// Package events publishes application events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/placement-portal/internal/application"
)

// DefaultQueue is the queue events are routed to when none is configured.
const DefaultQueue = "placement.events"

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Message is the JSON body of a published event.
type Message struct {
	Name           string    `json:"name"`
	OccurredAt     time.Time `json:"occurredAt"`
	ApplicationID  string    `json:"applicationId"`
	JobID          string    `json:"jobId"`
	StudentID      string    `json:"studentId"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	ActorID        string    `json:"actorId,omitempty"`
}

// AMQPPublisher implements application.EventPublisher over a durable queue
// on the default exchange.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel Channel
	queue   string
	logger  *slog.Logger
}

var _ application.EventPublisher = (*AMQPPublisher)(nil)

// Dial connects to url, declares queue and returns a publisher on it.
func Dial(url, queue string, logger *slog.Logger) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("events: amqp url is required")
	}
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: connect: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("events: declare queue %s: %w", queue, err)
	}

	publisher := NewPublisher(ch, queue, logger)
	publisher.conn = conn
	return publisher, nil
}

// NewPublisher returns a publisher routing to queue over ch.
func NewPublisher(ch Channel, queue string, logger *slog.Logger) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{channel: ch, queue: queue, logger: logger}
}

// Publish sends event as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, event application.Event) error {
	if p == nil || p.channel == nil {
		return errors.New("events: publisher not configured")
	}

	body, err := json.Marshal(newMessage(event))
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         event.Name,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Name, err)
	}
	p.logger.DebugContext(ctx, "event published", "event", event.Name, "application_id", event.ApplicationID, "queue", p.queue)
	return nil
}

// Close closes the channel and, when Dial opened it, the connection.
func (p *AMQPPublisher) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

func newMessage(event application.Event) Message {
	return Message{
		Name:           event.Name,
		OccurredAt:     event.OccurredAt.UTC(),
		ApplicationID:  event.ApplicationID,
		JobID:          event.JobID,
		StudentID:      event.StudentID,
		Status:         string(event.Status),
		PreviousStatus: string(event.PreviousStatus),
		ActorID:        event.ActorID,
	}
}
