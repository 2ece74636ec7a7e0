package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/persistence/memory"
	"github.com/example/placement-portal/internal/repository"
	"github.com/example/placement-portal/internal/testfixtures"
	"github.com/example/placement-portal/internal/workflow"
)

func TestUsersRoundTripRoleProfiles(t *testing.T) {
	ctx := context.Background()
	set := repository.NewSet(memory.New())

	student := testfixtures.NewStudentFixture(testfixtures.WithUserID("s-1")).Application()
	recruiter := testfixtures.NewRecruiterFixture(testfixtures.WithUserID("r-1")).Application()
	officer := testfixtures.NewOfficerFixture(testfixtures.WithUserID("o-1")).Application()

	for _, user := range []application.User{student, recruiter, officer} {
		if _, err := set.Users.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", user.ID, err)
		}
	}

	gotStudent, err := set.Users.GetUser(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if gotStudent.Student == nil || gotStudent.Recruiter != nil || gotStudent.Department() != "CSE" {
		t.Fatalf("student profile lost: %+v", gotStudent)
	}
	if gotStudent.Resume != nil {
		t.Fatalf("expected no resume, got %+v", gotStudent.Resume)
	}

	gotRecruiter, err := set.Users.GetUserByEmail(ctx, recruiter.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if gotRecruiter.Recruiter == nil || gotRecruiter.Recruiter.Company != "Acme" || gotRecruiter.Student != nil {
		t.Fatalf("recruiter profile lost: %+v", gotRecruiter)
	}

	gotOfficer, err := set.Users.GetUser(ctx, "o-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if gotOfficer.Student != nil || gotOfficer.Recruiter != nil {
		t.Fatalf("officer should carry no profile: %+v", gotOfficer)
	}

	count, err := set.Users.CountUsers(ctx, application.RoleStudent)
	if err != nil || count != 1 {
		t.Fatalf("CountUsers = %d, %v", count, err)
	}
}

func TestUsersUpdateKeepsPasswordAndStoresResume(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	users := repository.NewUsers(store)

	student := testfixtures.NewStudentFixture(testfixtures.WithUserID("s-1")).Application()
	if _, err := users.CreateUser(ctx, student); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	uploaded := testfixtures.ReferenceTime().Add(time.Hour)
	student.PasswordHash = ""
	student.Resume = &application.Resume{Filename: "cv.pdf", Path: "/uploads/cv.pdf", MimeType: "application/pdf", Size: 1024, UploadedAt: uploaded}
	updated, err := users.UpdateUser(ctx, student)
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.Resume == nil || updated.Resume.Filename != "cv.pdf" || !updated.Resume.UploadedAt.Equal(uploaded) {
		t.Fatalf("resume not stored: %+v", updated.Resume)
	}

	stored, err := store.GetUser(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if stored.PasswordHash == "" {
		t.Fatal("password hash was cleared by a profile update")
	}
}

func TestApplicationsTranslateStatusAndFilters(t *testing.T) {
	ctx := context.Background()
	apps := repository.NewApplications(memory.New())

	offeredAt := testfixtures.ReferenceTime().Add(2 * time.Hour)
	for _, fixture := range []testfixtures.ApplicationFixture{
		testfixtures.NewApplicationFixture("s-1", "j-1", testfixtures.WithApplicationID("a-1")),
		testfixtures.NewApplicationFixture("s-2", "j-1", testfixtures.WithApplicationID("a-2"), testfixtures.WithOffer(offeredAt)),
	} {
		if _, err := apps.CreateApplication(ctx, fixture.Application()); err != nil {
			t.Fatalf("CreateApplication failed: %v", err)
		}
	}

	_, err := apps.CreateApplication(ctx, testfixtures.NewApplicationFixture("s-1", "j-1").Application())
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	offered, err := apps.ListApplications(ctx, application.ApplicationFilter{JobIDs: []string{"j-1"}, Status: workflow.StatusOffered})
	if err != nil {
		t.Fatalf("ListApplications failed: %v", err)
	}
	if len(offered) != 1 || offered[0].ID != "a-2" || offered[0].Status != workflow.StatusOffered {
		t.Fatalf("unexpected offered list %+v", offered)
	}
	if offered[0].OfferedAt == nil || !offered[0].OfferedAt.Equal(offeredAt) {
		t.Fatalf("offered at = %v", offered[0].OfferedAt)
	}

	n, err := apps.CountApplications(ctx, application.ApplicationFilter{StudentID: "s-1"})
	if err != nil || n != 1 {
		t.Fatalf("CountApplications = %d, %v", n, err)
	}
}

func TestJobsAndMessages(t *testing.T) {
	ctx := context.Background()
	set := repository.NewSet(memory.New())

	job := testfixtures.NewJobFixture(testfixtures.WithJobID("j-1"), testfixtures.WithBranches("CSE")).Application()
	created, err := set.Jobs.CreateJob(ctx, job)
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if created.ID != "j-1" || len(created.Branches) != 1 {
		t.Fatalf("unexpected job %+v", created)
	}
	listed, err := set.Jobs.ListJobs(ctx, application.JobFilter{PostedBy: job.PostedBy})
	if err != nil || len(listed) != 1 {
		t.Fatalf("ListJobs = %v, %v", listed, err)
	}

	msg := application.Message{ID: "m-1", Name: "Visitor", Email: "v@example.com", Subject: "Hi", Body: "Hello", CreatedAt: testfixtures.ReferenceTime()}
	if _, err := set.Messages.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
	msgs, err := set.Messages.ListMessages(ctx)
	if err != nil || len(msgs) != 1 || msgs[0].Body != "Hello" {
		t.Fatalf("ListMessages = %+v, %v", msgs, err)
	}
}
