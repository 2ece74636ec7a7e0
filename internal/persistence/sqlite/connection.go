package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/persistence/sqlite/migration"
)

// ConnectionPool wraps the SQLite connection pool with transaction support.
type ConnectionPool struct {
	db     *sql.DB
	config migration.SQLiteConfig
}

// NewConnectionPool opens a pool using config.
func NewConnectionPool(config migration.SQLiteConfig) (*ConnectionPool, error) {
	db, err := migration.Open(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &ConnectionPool{db: db, config: config}, nil
}

// DB returns the underlying database handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc runs inside a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction runs fn in a transaction, committing when it returns nil
// and rolling back otherwise.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) (err error) {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ErrorMapper maps SQLite errors to persistence errors.
type ErrorMapper struct{}

// NewErrorMapper creates an error mapper.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError translates driver errors into persistence sentinels, keeping the
// original message.
func (em *ErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "UNIQUE constraint failed"), strings.Contains(errStr, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(errStr, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKeyViolation, err)
	case strings.Contains(errStr, "CHECK constraint failed"), strings.Contains(errStr, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	case strings.Contains(errStr, "database is locked"), strings.Contains(errStr, "database is busy"),
		strings.Contains(errStr, "unable to open database"), errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return err
}

// RetryConfig configures retries of writes that hit a locked database.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the retry settings used by the store.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  20 * time.Millisecond,
		MaxDelay:      500 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

// RetryHelper retries operations failing with transient errors.
type RetryHelper struct {
	config RetryConfig
	mapper *ErrorMapper
}

// NewRetryHelper creates a retry helper.
func NewRetryHelper(config RetryConfig) *RetryHelper {
	return &RetryHelper{config: config, mapper: NewErrorMapper()}
}

// WithRetry runs fn until it succeeds, fails permanently, or retries run out.
// The returned error is already mapped.
func (rh *RetryHelper) WithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := rh.config.InitialDelay

	for attempt := 0; attempt <= rh.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * rh.config.BackoffFactor)
				if delay > rh.config.MaxDelay {
					delay = rh.config.MaxDelay
				}
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = rh.mapper.MapError(err)
		if !isRetryableError(err) {
			return lastErr
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", rh.config.MaxRetries, lastErr)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is locked") || strings.Contains(errStr, "database is busy") || strings.Contains(errStr, "SQLITE_BUSY")
}

// Timestamps are stored as RFC 3339 text in UTC.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatOptionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func parseOptionalTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPointer(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
