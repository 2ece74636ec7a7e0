package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// MessageRepository stores contact form submissions.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg Message) (Message, error)
	ListMessages(ctx context.Context) ([]Message, error)
}

// MessageService accepts contact form submissions and lists them for officers.
type MessageService struct {
	messages    MessageRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(messages MessageRepository, idGenerator func() string, now func() time.Time) *MessageService {
	return NewMessageServiceWithLogger(messages, idGenerator, now, nil)
}

// NewMessageServiceWithLogger constructs a MessageService with a specified logger.
func NewMessageServiceWithLogger(messages MessageRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MessageService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MessageService{messages: messages, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// Submit validates and stores a contact message. No authentication is needed.
func (s *MessageService) Submit(ctx context.Context, input MessageInput) (msg Message, err error) {
	if s == nil {
		err = fmt.Errorf("MessageService is nil")
		return
	}
	if s.messages == nil {
		err = fmt.Errorf("message repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "MessageService", "Submit")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to store message", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("message_id", msg.ID).InfoContext(ctx, "message received")
	}()

	candidate := Message{
		Name:      strings.TrimSpace(input.Name),
		Email:     normalizeEmail(input.Email),
		Subject:   strings.TrimSpace(input.Subject),
		Body:      strings.TrimSpace(input.Message),
		CreatedAt: s.now(),
	}

	vErr := &ValidationError{}
	if candidate.Name == "" {
		vErr.add("name", "name is required")
	}
	if problem := validateEmail(candidate.Email); problem != "" {
		vErr.add("email", problem)
	}
	if candidate.Subject == "" {
		vErr.add("subject", "subject is required")
	}
	if candidate.Body == "" {
		vErr.add("message", "message is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	candidate.ID = s.idGenerator()
	msg, err = s.messages.CreateMessage(ctx, candidate)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// List returns every message, newest first. Officers only.
func (s *MessageService) List(ctx context.Context, principal Principal) ([]Message, error) {
	if s == nil || s.messages == nil {
		return nil, fmt.Errorf("message service not configured")
	}
	if err := Authorize(principal, ActionListMessages); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListMessages(ctx)
	if err != nil {
		err = mapRepoError(err)
		serviceLogger(ctx, s.logger, "MessageService", "List").ErrorContext(ctx, "failed to list messages", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}
