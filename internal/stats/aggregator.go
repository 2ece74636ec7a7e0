// Package stats computes placement dashboards and serves cached platform
// counters to polling and live clients.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/example/placement-portal/internal/branch"
	"github.com/example/placement-portal/internal/workflow"
)

// RecentWindow is the trailing window covered by the daily series.
const RecentWindow = 7 * 24 * time.Hour

// DateLayout keys the daily series.
const DateLayout = "2006-01-02"

// Job is the job view needed for aggregation.
type Job struct {
	ID      string
	Title   string
	Company string
}

// Application is the application view needed for aggregation.
type Application struct {
	ID        string
	StudentID string
	JobID     string
	Status    workflow.Status
	AppliedAt time.Time
}

// Student is the student view needed to group offers.
type Student struct {
	ID         string
	Name       string
	Email      string
	Department string
	CGPA       *float64
}

// Input is a fresh read of everything a report depends on.
type Input struct {
	// Jobs are the jobs in scope.
	Jobs []Job
	// Applications are all applications on the platform. Scoped figures only
	// count those whose job is in Jobs; placement figures use all of them.
	Applications []Application
	// Students resolves offered students by id.
	Students map[string]Student
	// TotalStudents is the number of users with the student role.
	TotalStudents int
	// IncludeRoster lists offered students under each department.
	IncludeRoster bool
}

// JobCount is the number of applications received by one job.
type JobCount struct {
	JobID   string
	Title   string
	Company string
	Count   int
}

// DayCount is the number of applications submitted on one date.
type DayCount struct {
	Date  string
	Count int
}

// OfferedStudent is a roster entry of a department breakdown.
type OfferedStudent struct {
	ID    string
	Name  string
	Email string
	CGPA  *float64
}

// DepartmentOffers counts offers by the offered student's department.
type DepartmentOffers struct {
	Department string
	Count      int
	Students   []OfferedStudent
}

// Report is the computed dashboard.
type Report struct {
	TotalJobs                int
	TotalApplications        int
	ByStatus                 map[workflow.Status]int
	ByJob                    []JobCount
	RecentByDate             []DayCount
	OffersByDepartment       []DepartmentOffers
	PlacementPercentage      float64
	TotalStudents            int
	RegisteredStudentCount   int
	OfferedStudentCount      int
	OfferedApplicationsCount int
}

// Aggregate builds a report from in as of now.
func Aggregate(in Input, now time.Time) Report {
	report := Report{
		TotalJobs:     len(in.Jobs),
		ByStatus:      make(map[workflow.Status]int, len(workflow.Statuses())),
		TotalStudents: in.TotalStudents,
	}
	for _, status := range workflow.Statuses() {
		report.ByStatus[status] = 0
	}

	jobIndex := make(map[string]int, len(in.Jobs))
	report.ByJob = make([]JobCount, len(in.Jobs))
	for i, job := range in.Jobs {
		jobIndex[job.ID] = i
		report.ByJob[i] = JobCount{JobID: job.ID, Title: job.Title, Company: job.Company}
	}

	since := now.Add(-RecentWindow)
	byDate := make(map[string]int)
	departments := make(map[string]*DepartmentOffers)

	registered := make(map[string]struct{})
	offered := make(map[string]struct{})

	for _, app := range in.Applications {
		registered[app.StudentID] = struct{}{}
		if app.Status == workflow.StatusOffered {
			offered[app.StudentID] = struct{}{}
			report.OfferedApplicationsCount++
		}

		idx, ok := jobIndex[app.JobID]
		if !ok {
			continue
		}
		report.TotalApplications++
		report.ByJob[idx].Count++
		if app.Status.Valid() {
			report.ByStatus[app.Status]++
		}
		if !app.AppliedAt.Before(since) {
			byDate[app.AppliedAt.UTC().Format(DateLayout)]++
		}

		if app.Status != workflow.StatusOffered {
			continue
		}
		student, ok := in.Students[app.StudentID]
		if !ok {
			continue
		}
		department := branch.Normalize(student.Department)
		entry, ok := departments[department]
		if !ok {
			entry = &DepartmentOffers{Department: department}
			departments[department] = entry
		}
		entry.Count++
		if in.IncludeRoster {
			entry.Students = append(entry.Students, OfferedStudent{
				ID:    student.ID,
				Name:  student.Name,
				Email: student.Email,
				CGPA:  student.CGPA,
			})
		}
	}

	sort.SliceStable(report.ByJob, func(i, j int) bool {
		if report.ByJob[i].Count != report.ByJob[j].Count {
			return report.ByJob[i].Count > report.ByJob[j].Count
		}
		return report.ByJob[i].Title < report.ByJob[j].Title
	})

	report.RecentByDate = make([]DayCount, 0, len(byDate))
	for date, count := range byDate {
		report.RecentByDate = append(report.RecentByDate, DayCount{Date: date, Count: count})
	}
	sort.Slice(report.RecentByDate, func(i, j int) bool {
		return report.RecentByDate[i].Date < report.RecentByDate[j].Date
	})

	report.OffersByDepartment = make([]DepartmentOffers, 0, len(departments))
	for _, entry := range departments {
		report.OffersByDepartment = append(report.OffersByDepartment, *entry)
	}
	sort.Slice(report.OffersByDepartment, func(i, j int) bool {
		a, b := report.OffersByDepartment[i], report.OffersByDepartment[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Department < b.Department
	})

	report.RegisteredStudentCount = len(registered)
	report.OfferedStudentCount = len(offered)
	report.PlacementPercentage = PlacementPercentage(len(offered), in.TotalStudents)

	return report
}

// PlacementPercentage returns placed/total as a percentage rounded to two
// decimals, clamped to [0, 100]. It is 0 when total is not positive.
func PlacementPercentage(placed, total int) float64 {
	if total <= 0 || placed <= 0 {
		return 0
	}
	if placed > total {
		placed = total
	}
	pct := float64(placed) / float64(total) * 100
	return math.Round(pct*100) / 100
}
