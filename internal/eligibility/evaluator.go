// Package eligibility decides whether a student may apply to a job.
package eligibility

import (
	"math"
	"time"

	"github.com/example/placement-portal/internal/branch"
)

// Reason explains a denied application.
type Reason string

const (
	ReasonAlreadyApplied Reason = "already applied"
	ReasonJobNotFound    Reason = "job not found"
	ReasonDeadlinePassed Reason = "deadline passed"
	ReasonCGPA           Reason = "CGPA requirement not met"
	ReasonBranch         Reason = "branch not eligible"
)

// Student carries the attributes checked against a job.
type Student struct {
	CGPA       *float64
	Department string
}

// Job carries the eligibility rules of a posting.
type Job struct {
	Deadline *time.Time
	MinCGPA  float64
	Branches []string
}

// Input bundles everything a decision depends on. A nil Job means the job
// could not be found.
type Input struct {
	Student        Student
	Job            *Job
	AlreadyApplied bool
	Now            time.Time
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Evaluate runs the checks in order and reports the first failure.
func Evaluate(in Input) Decision {
	if in.AlreadyApplied {
		return deny(ReasonAlreadyApplied)
	}
	if in.Job == nil {
		return deny(ReasonJobNotFound)
	}
	job := in.Job

	if job.Deadline != nil && !job.Deadline.IsZero() && job.Deadline.Before(in.Now) {
		return deny(ReasonDeadlinePassed)
	}

	if requiresCGPA(job.MinCGPA) && !meetsCGPA(in.Student.CGPA, job.MinCGPA) {
		return deny(ReasonCGPA)
	}

	if branches := normalizedBranches(job.Branches); len(branches) > 0 {
		if _, ok := branches[branch.Normalize(in.Student.Department)]; !ok {
			return deny(ReasonBranch)
		}
	}

	return Decision{Allowed: true}
}

func requiresCGPA(min float64) bool {
	// NaN compares false against everything, so it is caught explicitly.
	return math.IsNaN(min) || min > 0
}

func meetsCGPA(cgpa *float64, min float64) bool {
	if cgpa == nil || !validCGPA(*cgpa) || !validCGPA(min) {
		return false
	}
	return *cgpa >= min
}

func validCGPA(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 10
}

func normalizedBranches(branches []string) map[string]struct{} {
	out := make(map[string]struct{}, len(branches))
	for _, b := range branches {
		if b == "" {
			continue
		}
		out[branch.Normalize(b)] = struct{}{}
	}
	return out
}
