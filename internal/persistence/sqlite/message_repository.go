package sqlite

import (
	"context"

	"github.com/example/placement-portal/internal/persistence"
)

// MessageRepository implements persistence.MessageRepository using SQLite.
type MessageRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewMessageRepository creates a SQLite message repository.
func NewMessageRepository(pool *ConnectionPool) *MessageRepository {
	return &MessageRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateMessage inserts a message.
func (r *MessageRepository) CreateMessage(ctx context.Context, msg persistence.Message) error {
	if msg.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO messages (id, name, email, subject, body, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Body, formatTime(msg.CreatedAt))
	return r.mapper.MapError(err)
}

// ListMessages returns every message, newest first.
func (r *MessageRepository) ListMessages(ctx context.Context) ([]persistence.Message, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, name, email, subject, body, created_at FROM messages ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	msgs := []persistence.Message{}
	for rows.Next() {
		var (
			msg       persistence.Message
			createdAt string
		)
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Body, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if msg.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return msgs, nil
}
