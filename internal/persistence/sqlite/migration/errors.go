package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that a migration execution failed.
	ErrMigrationFailed = errors.New("migration execution failed")
	// ErrInvalidMigrationFile indicates that a migration file is malformed.
	ErrInvalidMigrationFile = errors.New("invalid migration file format")
	// ErrDuplicateVersion indicates that two files share a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrChecksumMismatch indicates that an applied file has since been edited.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
)

// MigrationError wraps a failure with the migration it concerns.
type MigrationError struct {
	Version   string
	FilePath  string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.FilePath, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration error (%s): %s: %v", e.FilePath, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *MigrationError) Unwrap() error {
	return e.Err
}

// NewMigrationError creates a MigrationError.
func NewMigrationError(version, filePath, operation string, err error) *MigrationError {
	return &MigrationError{Version: version, FilePath: filePath, Operation: operation, Err: err}
}

// DatabaseError wraps a database failure during migration.
type DatabaseError struct {
	Version   string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("database error in migration %s during %s: %v", e.Version, e.Operation, e.Err)
	}
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a DatabaseError.
func NewDatabaseError(version, operation string, err error) *DatabaseError {
	return &DatabaseError{Version: version, Operation: operation, Err: err}
}
