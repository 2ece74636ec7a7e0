package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrUnauthenticated is returned when no valid identity accompanies a request.
	ErrUnauthenticated = errors.New("application: unauthenticated")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when an email and password pair does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("application: conflict")
	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	// Callers may retry the request.
	ErrStoreUnavailable = errors.New("application: store unavailable")
)

// Conflict codes identify why a state changing request was refused.
const (
	ConflictEmailTaken        = "email_taken"
	ConflictAlreadyApplied    = "already_applied"
	ConflictDeadlinePassed    = "deadline_passed"
	ConflictCGPA              = "cgpa_not_met"
	ConflictBranch            = "branch_not_eligible"
	ConflictBackward          = "backward_transition"
	ConflictOfferRevoked      = "offer_revocation"
	ConflictTerminal          = "final_outcome"
	ConflictInvalidTransition = "invalid_transition"
)

// ConflictError reports a request that is well formed but not allowed in the
// current state of a resource.
type ConflictError struct {
	Code   string
	Reason string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	if c.Reason == "" {
		return "conflict"
	}
	return c.Reason
}

// Is makes every ConflictError match ErrConflict.
func (c *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func newConflict(code, reason string) *ConflictError {
	return &ConflictError{Code: code, Reason: reason}
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

func fieldError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}
