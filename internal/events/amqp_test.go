package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/workflow"
)

type recordingChannel struct {
	exchange string
	key      string
	msgs     []amqp.Publishing
	err      error
	closed   bool
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	c.exchange = exchange
	c.key = key
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishEncodesEvent(t *testing.T) {
	ch := &recordingChannel{}
	publisher := NewPublisher(ch, "", quietLogger())

	occurred := time.Date(2025, time.August, 4, 12, 0, 0, 0, time.UTC)
	err := publisher.Publish(context.Background(), application.Event{
		Name:           application.EventApplicationStatusChanged,
		OccurredAt:     occurred,
		ApplicationID:  "a-1",
		JobID:          "j-1",
		StudentID:      "s-1",
		Status:         workflow.StatusShortlisted,
		PreviousStatus: workflow.StatusApplied,
		ActorID:        "o-1",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if ch.exchange != "" || ch.key != DefaultQueue {
		t.Fatalf("routed to %q/%q", ch.exchange, ch.key)
	}
	if len(ch.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(ch.msgs))
	}
	msg := ch.msgs[0]
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent || msg.Type != application.EventApplicationStatusChanged {
		t.Fatalf("unexpected publishing %+v", msg)
	}

	var body Message
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Status != "shortlisted" || body.PreviousStatus != "applied" || body.ApplicationID != "a-1" || !body.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestPublishWrapsChannelErrors(t *testing.T) {
	boom := errors.New("channel closed")
	publisher := NewPublisher(&recordingChannel{err: boom}, "custom", quietLogger())

	err := publisher.Publish(context.Background(), application.Event{Name: application.EventApplicationCreated})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped channel error, got %v", err)
	}
}

func TestCloseClosesChannel(t *testing.T) {
	ch := &recordingChannel{}
	if err := NewPublisher(ch, "q", quietLogger()).Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !ch.closed {
		t.Fatal("channel was not closed")
	}
	var nilPublisher *AMQPPublisher
	if err := nilPublisher.Close(); err != nil {
		t.Fatalf("nil Close = %v", err)
	}
}
