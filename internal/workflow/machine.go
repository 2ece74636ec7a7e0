package workflow

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidStatus is returned when the requested status is not a workflow state.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrBackward is returned when the requested status ranks below the current one.
	ErrBackward = errors.New("cannot move backward")
	// ErrOfferRevoked is returned when an offered application is moved to rejected.
	ErrOfferRevoked = errors.New("cannot revoke an offer")
	// ErrTerminal is returned by strict machines when leaving a final outcome.
	ErrTerminal = errors.New("application already has a final outcome")
)

// State is the part of an application owned by the machine.
type State struct {
	Status        Status
	ShortlistedAt *time.Time
	InterviewedAt *time.Time
	OfferedAt     *time.Time
	RejectedAt    *time.Time
}

// TransitionError describes a refused transition.
type TransitionError struct {
	From Status
	To   Status
	Err  error
}

func (e *TransitionError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *TransitionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Option configures a Machine.
type Option func(*Machine)

// WithStrictTerminal makes both final outcomes closed. By default only an
// offer is locked and rejected may still be moved to offered.
func WithStrictTerminal(strict bool) Option {
	return func(m *Machine) { m.strictTerminal = strict }
}

// Machine validates and applies status transitions.
type Machine struct {
	strictTerminal bool
}

// NewMachine constructs a machine with the supplied options.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Transition returns the state that results from moving current to
// requested at now. The input state is never modified.
func (m *Machine) Transition(current State, requested Status, now time.Time) (State, error) {
	if !requested.Valid() {
		return current, &TransitionError{From: current.Status, To: requested, Err: ErrInvalidStatus}
	}
	from := current.Status
	if !from.Valid() {
		from = StatusApplied
	}

	if from == StatusOffered && requested == StatusRejected {
		return current, &TransitionError{From: from, To: requested, Err: ErrOfferRevoked}
	}
	if Rank(requested) < Rank(from) {
		return current, &TransitionError{From: from, To: requested, Err: ErrBackward}
	}
	if requested == from {
		return current, nil
	}
	if m != nil && m.strictTerminal && from.Terminal() {
		return current, &TransitionError{From: from, To: requested, Err: ErrTerminal}
	}

	next := current
	next.Status = requested
	stamp := now
	switch requested {
	case StatusShortlisted:
		next.ShortlistedAt = &stamp
	case StatusInterviewed:
		next.InterviewedAt = &stamp
	case StatusOffered:
		next.OfferedAt = &stamp
	case StatusRejected:
		next.RejectedAt = &stamp
	}
	return next, nil
}

// Describe renders a transition for log lines.
func Describe(from, to Status) string {
	return fmt.Sprintf("%s->%s", from, to)
}
