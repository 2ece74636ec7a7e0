package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/branch"
	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/stats"
	"github.com/example/placement-portal/internal/workflow"
)

func newStatsFixture(now time.Time) (*StatsService, *userRepoStub, *applicationRepoStub) {
	cgpa := 9.0
	users := newUserRepoStub(
		User{ID: "s-1", Name: "Asha", Email: "asha@example.edu", Role: RoleStudent, Student: &StudentProfile{Department: "CSE", RollNumber: "1", CGPA: &cgpa}},
		User{ID: "s-2", Name: "Ravi", Email: "ravi@example.edu", Role: RoleStudent, Student: &StudentProfile{Department: "Mech", RollNumber: "2"}},
		User{ID: "s-3", Name: "Meera", Email: "meera@example.edu", Role: RoleStudent, Student: &StudentProfile{Department: "ISE", RollNumber: "3"}},
		User{ID: "s-4", Name: "Kiran", Email: "kiran@example.edu", Role: RoleStudent, Student: &StudentProfile{Department: "ECE", RollNumber: "4"}},
		User{ID: "o-1", Name: "Officer", Role: RoleOfficer},
	)
	jobs := &jobRepoStub{jobs: []Job{
		{ID: "j-1", Title: "SDE", Company: "Acme", PostedBy: "o-1"},
		{ID: "j-2", Title: "Analyst", Company: "Beta", PostedBy: "o-1"},
		{ID: "j-3", Title: "Ops", Company: "Omega", PostedBy: "o-2"},
	}}
	apps := newApplicationRepoStub(
		Application{ID: "a-1", StudentID: "s-1", JobID: "j-1", Status: workflow.StatusOffered, AppliedAt: now.Add(-24 * time.Hour)},
		Application{ID: "a-2", StudentID: "s-2", JobID: "j-1", Status: workflow.StatusApplied, AppliedAt: now.Add(-48 * time.Hour)},
		Application{ID: "a-3", StudentID: "s-3", JobID: "j-3", Status: workflow.StatusOffered, AppliedAt: now.Add(-30 * 24 * time.Hour)},
		Application{ID: "a-4", StudentID: "s-9", JobID: "j-2", Status: workflow.StatusOffered, AppliedAt: now.Add(-time.Hour)},
	)
	svc := NewStatsService(users, jobs, apps, func() time.Time { return now })
	return svc, users, apps
}

func TestStatsService_OfficerDashboard(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newStatsFixture(now)

	report, err := svc.OfficerDashboard(context.Background(), officerPrincipal)
	if err != nil {
		t.Fatalf("OfficerDashboard failed: %v", err)
	}
	if report.TotalJobs != 2 || report.TotalApplications != 3 {
		t.Fatalf("unexpected totals %+v", report)
	}
	if report.ByStatus[workflow.StatusOffered] != 2 || report.ByStatus[workflow.StatusRejected] != 0 {
		t.Fatalf("unexpected status counts %v", report.ByStatus)
	}
	if report.ByJob[0].JobID != "j-1" || report.ByJob[0].Count != 2 {
		t.Fatalf("unexpected job counts %+v", report.ByJob)
	}
	if len(report.OffersByDepartment) != 1 || report.OffersByDepartment[0].Department != branch.ComputerScience {
		t.Fatalf("expected offers grouped under computer science only, got %+v", report.OffersByDepartment)
	}
	if roster := report.OffersByDepartment[0].Students; len(roster) != 1 || roster[0].Email != "asha@example.edu" {
		t.Fatalf("expected offered roster, got %+v", roster)
	}
	// Three distinct offered student ids on the platform against four registered students.
	if report.PlacementPercentage != 75 || report.TotalStudents != 4 {
		t.Fatalf("unexpected placement figures %+v", report)
	}
	if report.OfferedApplicationsCount != 3 || report.RegisteredStudentCount != 4 {
		t.Fatalf("unexpected platform figures %+v", report)
	}

	if _, err := svc.OfficerDashboard(context.Background(), studentPrincipal); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStatsService_PublicStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newStatsFixture(now)

	report, err := svc.PublicStats(context.Background())
	if err != nil {
		t.Fatalf("PublicStats failed: %v", err)
	}
	if report.TotalJobs != 3 || report.TotalApplications != 4 {
		t.Fatalf("unexpected totals %+v", report)
	}
	for _, dept := range report.OffersByDepartment {
		if len(dept.Students) != 0 {
			t.Fatalf("public stats must not list students")
		}
	}
	if len(report.RecentByDate) != 3 {
		t.Fatalf("expected three recent days, got %+v", report.RecentByDate)
	}
}

func TestStatsService_Counters(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	svc, users, _ := newStatsFixture(now)

	first := svc.Counters(context.Background())
	want := stats.Counters{Students: 4, Jobs: 3, Applications: 4, Offers: 3}
	if first.Data != want || first.Cached {
		t.Fatalf("unexpected first result %+v", first)
	}

	second := svc.Counters(context.Background())
	if !second.Cached {
		t.Fatalf("expected cached result")
	}

	users.mu.Lock()
	users.err = persistence.ErrUnavailable
	users.mu.Unlock()

	refreshed := svc.cache.Refresh(context.Background())
	if !refreshed.Fallback || refreshed.Data != want {
		t.Fatalf("expected stale fallback, got %+v", refreshed)
	}
}

func TestStatsService_SubscribeCounters(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newStatsFixture(now)

	updates, cancel := svc.SubscribeCounters(context.Background())
	defer cancel()

	select {
	case update := <-updates:
		if update.Result.Data.Jobs != 3 {
			t.Fatalf("unexpected initial update %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected an initial update")
	}
}
