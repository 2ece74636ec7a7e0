package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique key (id, email, student and job pair) already exists.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record is missing required values.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a record references a missing parent.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("persistence: store unavailable")
)
