package eligibility

import (
	"math"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/branch"
)

func cgpa(v float64) *float64 { return &v }

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		in   Input
		want Decision
	}{
		{
			name: "already applied wins over everything",
			in: Input{
				AlreadyApplied: true,
				Job:            &Job{Deadline: &past, MinCGPA: 9},
				Now:            now,
			},
			want: Decision{Reason: ReasonAlreadyApplied},
		},
		{
			name: "missing job",
			in:   Input{Now: now},
			want: Decision{Reason: ReasonJobNotFound},
		},
		{
			name: "deadline passed regardless of cgpa and branch",
			in: Input{
				Student: Student{CGPA: cgpa(9.5), Department: "CSE"},
				Job:     &Job{Deadline: &past, MinCGPA: 6, Branches: []string{branch.ComputerScience}},
				Now:     now,
			},
			want: Decision{Reason: ReasonDeadlinePassed},
		},
		{
			name: "deadline equal to now is still open",
			in: Input{
				Student: Student{CGPA: cgpa(8)},
				Job:     &Job{Deadline: &now},
				Now:     now,
			},
			want: Decision{Allowed: true},
		},
		{
			name: "cgpa below minimum with matching branch",
			in: Input{
				Student: Student{CGPA: cgpa(6.5), Department: "Computer Science"},
				Job:     &Job{Deadline: &future, MinCGPA: 7.0, Branches: []string{branch.ComputerScience}},
				Now:     now,
			},
			want: Decision{Reason: ReasonCGPA},
		},
		{
			name: "missing cgpa with minimum set",
			in: Input{
				Student: Student{Department: "CSE"},
				Job:     &Job{MinCGPA: 6},
				Now:     now,
			},
			want: Decision{Reason: ReasonCGPA},
		},
		{
			name: "malformed cgpa",
			in: Input{
				Student: Student{CGPA: cgpa(math.NaN())},
				Job:     &Job{MinCGPA: 6},
				Now:     now,
			},
			want: Decision{Reason: ReasonCGPA},
		},
		{
			name: "malformed minimum",
			in: Input{
				Student: Student{CGPA: cgpa(9)},
				Job:     &Job{MinCGPA: math.NaN()},
				Now:     now,
			},
			want: Decision{Reason: ReasonCGPA},
		},
		{
			name: "no minimum ignores missing cgpa",
			in: Input{
				Student: Student{Department: "Mechanical"},
				Job:     &Job{},
				Now:     now,
			},
			want: Decision{Allowed: true},
		},
		{
			name: "branch not in list",
			in: Input{
				Student: Student{CGPA: cgpa(8), Department: "Civil Engineering"},
				Job:     &Job{Branches: []string{branch.ComputerScience, branch.InformationScience}},
				Now:     now,
			},
			want: Decision{Reason: ReasonBranch},
		},
		{
			name: "free text department matches canonical branch",
			in: Input{
				Student: Student{CGPA: cgpa(8), Department: "ece"},
				Job:     &Job{Branches: []string{branch.ElectronicsCommunication}},
				Now:     now,
			},
			want: Decision{Allowed: true},
		},
		{
			name: "empty department not eligible for restricted job",
			in: Input{
				Student: Student{CGPA: cgpa(8)},
				Job:     &Job{Branches: []string{branch.Civil}},
				Now:     now,
			},
			want: Decision{Reason: ReasonBranch},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.in); got != tc.want {
				t.Fatalf("Evaluate() = %+v, want %+v", got, tc.want)
			}
		})
	}
}
