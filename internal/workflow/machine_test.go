package workflow

import (
	"errors"
	"testing"
	"time"
)

var reference = time.Date(2024, time.June, 3, 9, 30, 0, 0, time.UTC)

func TestMachine_Transition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr error
	}{
		{name: "applied to shortlisted", from: StatusApplied, to: StatusShortlisted},
		{name: "applied directly to offered", from: StatusApplied, to: StatusOffered},
		{name: "interviewed to rejected", from: StatusInterviewed, to: StatusRejected},
		{name: "rejected to offered keeps rank parity", from: StatusRejected, to: StatusOffered},
		{name: "shortlisted back to applied", from: StatusShortlisted, to: StatusApplied, wantErr: ErrBackward},
		{name: "offered back to interviewed", from: StatusOffered, to: StatusInterviewed, wantErr: ErrBackward},
		{name: "offered to rejected", from: StatusOffered, to: StatusRejected, wantErr: ErrOfferRevoked},
		{name: "unknown status", from: StatusApplied, to: Status("hired"), wantErr: ErrInvalidStatus},
	}

	machine := NewMachine()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			current := State{Status: tc.from}
			next, err := machine.Transition(current, tc.to, reference)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if next.Status != tc.from {
					t.Fatalf("expected status to remain %s, got %s", tc.from, next.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if next.Status != tc.to {
				t.Fatalf("expected status %s, got %s", tc.to, next.Status)
			}
		})
	}
}

func TestMachine_TransitionStampsMilestones(t *testing.T) {
	machine := NewMachine()

	state := State{Status: StatusApplied}
	state, err := machine.Transition(state, StatusShortlisted, reference)
	if err != nil {
		t.Fatalf("shortlist failed: %v", err)
	}
	if state.ShortlistedAt == nil || !state.ShortlistedAt.Equal(reference) {
		t.Fatalf("expected shortlistedAt %v, got %v", reference, state.ShortlistedAt)
	}

	later := reference.Add(48 * time.Hour)
	state, err = machine.Transition(state, StatusInterviewed, later)
	if err != nil {
		t.Fatalf("interview failed: %v", err)
	}
	if state.InterviewedAt == nil || !state.InterviewedAt.Equal(later) {
		t.Fatalf("expected interviewedAt %v, got %v", later, state.InterviewedAt)
	}
	if !state.ShortlistedAt.Equal(reference) {
		t.Fatalf("expected earlier milestone to be kept, got %v", state.ShortlistedAt)
	}
	if state.OfferedAt != nil || state.RejectedAt != nil {
		t.Fatalf("expected outcome milestones to stay empty")
	}
}

func TestMachine_SelfTransitionIsNoop(t *testing.T) {
	machine := NewMachine()
	offeredAt := reference
	state := State{Status: StatusOffered, OfferedAt: &offeredAt}

	next, err := machine.Transition(state, StatusOffered, reference.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.OfferedAt.Equal(reference) {
		t.Fatalf("expected offeredAt to stay %v, got %v", reference, next.OfferedAt)
	}
}

func TestMachine_StrictTerminal(t *testing.T) {
	machine := NewMachine(WithStrictTerminal(true))

	_, err := machine.Transition(State{Status: StatusRejected}, StatusOffered, reference)
	if !errors.Is(err, ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}

	var tErr *TransitionError
	if !errors.As(err, &tErr) || tErr.From != StatusRejected || tErr.To != StatusOffered {
		t.Fatalf("expected transition error details, got %#v", err)
	}
}

func TestMachine_DoesNotMutateInput(t *testing.T) {
	machine := NewMachine()
	state := State{Status: StatusApplied}

	if _, err := machine.Transition(state, StatusOffered, reference); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Status != StatusApplied || state.OfferedAt != nil {
		t.Fatalf("expected input state to be unchanged, got %#v", state)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Offered "); !ok || status != StatusOffered {
		t.Fatalf("expected offered, got %q %v", status, ok)
	}
	if _, ok := ParseStatus("hired"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
	if Rank(StatusOffered) != Rank(StatusRejected) {
		t.Fatalf("expected final outcomes to share a rank")
	}
}
