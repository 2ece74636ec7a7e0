// Package workflow implements the forward-only status machine that governs
// how an application moves from applied to a final outcome.
package workflow

import "strings"

// Status is an application workflow state.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusShortlisted Status = "shortlisted"
	StatusInterviewed Status = "interviewed"
	StatusOffered     Status = "offered"
	StatusRejected    Status = "rejected"
)

var ranks = map[Status]int{
	StatusApplied:     1,
	StatusShortlisted: 2,
	StatusInterviewed: 3,
	StatusOffered:     4,
	StatusRejected:    4,
}

// Statuses lists every status in workflow order.
func Statuses() []Status {
	return []Status{StatusApplied, StatusShortlisted, StatusInterviewed, StatusOffered, StatusRejected}
}

// ParseStatus resolves a user supplied value to a known status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := ranks[status]
	return status, ok
}

// Rank returns the workflow depth of status, or 0 for unknown values.
func Rank(status Status) int {
	return ranks[status]
}

// Valid reports whether status is a known workflow state.
func (s Status) Valid() bool {
	_, ok := ranks[s]
	return ok
}

// Terminal reports whether status is a final outcome.
func (s Status) Terminal() bool {
	return s == StatusOffered || s == StatusRejected
}
