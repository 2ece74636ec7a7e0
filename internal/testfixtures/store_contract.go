package testfixtures

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

// RunStoreContract checks the behaviour every persistence.Store must share.
func RunStoreContract(t *testing.T, open StoreOpener) {
	t.Helper()

	t.Run("users", func(t *testing.T) {
		t.Parallel()
		testUserContract(t, open(t))
	})
	t.Run("jobs", func(t *testing.T) {
		t.Parallel()
		testJobContract(t, open(t))
	})
	t.Run("applications", func(t *testing.T) {
		t.Parallel()
		testApplicationContract(t, open(t))
	})
	t.Run("messages", func(t *testing.T) {
		t.Parallel()
		testMessageContract(t, open(t))
	})
}

func testUserContract(t *testing.T, store persistence.Store) {
	ctx := context.Background()

	student := NewStudentFixture(WithUserID("s-1"), WithUserEmail("Asha@Example.edu")).Persistence()
	officer := NewOfficerFixture(WithUserID("o-1"), WithUserEmail("officer@example.edu")).Persistence()
	for _, user := range []persistence.User{student, officer} {
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", user.ID, err)
		}
	}

	fetched, err := store.GetUserByEmail(ctx, " asha@example.EDU ")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if fetched.ID != "s-1" || fetched.Email != "asha@example.edu" {
		t.Fatalf("unexpected user %+v", fetched)
	}
	if fetched.CGPA == nil || *fetched.CGPA != 8 || fetched.Department != "CSE" {
		t.Fatalf("student profile not stored: %+v", fetched)
	}
	if !fetched.CreatedAt.Equal(student.CreatedAt) {
		t.Fatalf("created at = %v, want %v", fetched.CreatedAt, student.CreatedAt)
	}

	dup := NewStudentFixture(WithUserEmail("asha@example.edu")).Persistence()
	if err := store.CreateUser(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused email, got %v", err)
	}

	uploaded := ReferenceTime().Add(time.Hour)
	fetched.Phone = "98450"
	fetched.ResumeFilename = "cv.pdf"
	fetched.ResumeMimeType = "application/pdf"
	fetched.ResumeSize = 2048
	fetched.ResumeUploadedAt = &uploaded
	fetched.UpdatedAt = uploaded
	if err := store.UpdateUser(ctx, fetched); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	updated, err := store.GetUser(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if updated.Phone != "98450" || updated.ResumeFilename != "cv.pdf" || updated.ResumeSize != 2048 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.ResumeUploadedAt == nil || !updated.ResumeUploadedAt.Equal(uploaded) {
		t.Fatalf("resume uploaded at = %v, want %v", updated.ResumeUploadedAt, uploaded)
	}

	missing := NewStudentFixture(WithUserID("ghost")).Persistence()
	if err := store.UpdateUser(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating unknown user, got %v", err)
	}
	if _, err := store.GetUser(ctx, "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	listed, err := store.ListUsersByID(ctx, []string{"o-1", "ghost", "s-1"})
	if err != nil {
		t.Fatalf("ListUsersByID failed: %v", err)
	}
	var ids []string
	for _, user := range listed {
		ids = append(ids, user.ID)
	}
	slices.Sort(ids)
	if !slices.Equal(ids, []string{"o-1", "s-1"}) {
		t.Fatalf("ListUsersByID returned %v", ids)
	}

	students, err := store.CountUsers(ctx, "student")
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	all, err := store.CountUsers(ctx, "")
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if students != 1 || all != 2 {
		t.Fatalf("counts = %d students, %d total", students, all)
	}
}

func testJobContract(t *testing.T, store persistence.Store) {
	ctx := context.Background()
	base := ReferenceTime()
	deadline := base.Add(72 * time.Hour)

	older := NewJobFixture(WithJobID("j-old"), WithJobCreatedAt(base), WithBranches("ECE", "CSE"), WithMinCGPA(7.5), WithDeadline(deadline)).Persistence()
	newer := NewJobFixture(WithJobID("j-new"), WithJobCreatedAt(base.Add(time.Hour)), WithPostedBy("o-2")).Persistence()
	for _, job := range []persistence.Job{older, newer} {
		if err := store.CreateJob(ctx, job); err != nil {
			t.Fatalf("CreateJob(%s) failed: %v", job.ID, err)
		}
	}

	fetched, err := store.GetJob(ctx, "j-old")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if !slices.Equal(fetched.Branches, []string{"ECE", "CSE"}) {
		t.Fatalf("branches = %v, want order preserved", fetched.Branches)
	}
	if fetched.MinCGPA != 7.5 || fetched.Deadline == nil || !fetched.Deadline.Equal(deadline) {
		t.Fatalf("eligibility not stored: %+v", fetched)
	}

	if dup := store.CreateJob(ctx, older); !errors.Is(dup, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused job ID, got %v", dup)
	}

	listed, err := store.ListJobs(ctx, persistence.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "j-new" || listed[1].ID != "j-old" {
		t.Fatalf("expected newest first, got %+v", listed)
	}
	if len(listed[0].Branches) != 0 {
		t.Fatalf("expected no branches on j-new, got %v", listed[0].Branches)
	}

	own, err := store.ListJobs(ctx, persistence.JobFilter{PostedBy: "o-2"})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(own) != 1 || own[0].ID != "j-new" {
		t.Fatalf("filter by poster returned %+v", own)
	}

	if count, err := store.CountJobs(ctx); err != nil || count != 2 {
		t.Fatalf("CountJobs = %d, %v", count, err)
	}
	if _, err := store.GetJob(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testApplicationContract(t *testing.T, store persistence.Store) {
	ctx := context.Background()
	base := ReferenceTime()

	first := NewApplicationFixture("s-1", "j-1", WithApplicationID("a-1"), WithAppliedAt(base)).Persistence()
	second := NewApplicationFixture("s-1", "j-2", WithApplicationID("a-2"), WithAppliedAt(base.Add(time.Minute)), WithOffer(base.Add(time.Hour))).Persistence()
	third := NewApplicationFixture("s-2", "j-1", WithApplicationID("a-3"), WithAppliedAt(base.Add(2*time.Minute))).Persistence()
	for _, app := range []persistence.Application{first, second, third} {
		if err := store.CreateApplication(ctx, app); err != nil {
			t.Fatalf("CreateApplication(%s) failed: %v", app.ID, err)
		}
	}

	again := NewApplicationFixture("s-1", "j-1").Persistence()
	if err := store.CreateApplication(ctx, again); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated student and job, got %v", err)
	}

	found, err := store.FindApplication(ctx, "s-1", "j-2")
	if err != nil {
		t.Fatalf("FindApplication failed: %v", err)
	}
	if found.ID != "a-2" || found.Status != "offered" || found.OfferedAt == nil {
		t.Fatalf("unexpected application %+v", found)
	}
	if _, err := store.FindApplication(ctx, "s-2", "j-2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cases := []struct {
		name   string
		filter persistence.ApplicationFilter
		want   []string
	}{
		{"all newest first", persistence.ApplicationFilter{}, []string{"a-3", "a-2", "a-1"}},
		{"by student", persistence.ApplicationFilter{StudentID: "s-1"}, []string{"a-2", "a-1"}},
		{"by jobs", persistence.ApplicationFilter{JobIDs: []string{"j-1"}}, []string{"a-3", "a-1"}},
		{"by status", persistence.ApplicationFilter{Status: "offered"}, []string{"a-2"}},
		{"combined", persistence.ApplicationFilter{StudentID: "s-2", JobIDs: []string{"j-1", "j-2"}}, []string{"a-3"}},
	}
	for _, tc := range cases {
		apps, err := store.ListApplications(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: ListApplications failed: %v", tc.name, err)
		}
		var got []string
		for _, app := range apps {
			got = append(got, app.ID)
		}
		if !slices.Equal(got, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		count, err := store.CountApplications(ctx, tc.filter)
		if err != nil || count != len(tc.want) {
			t.Fatalf("%s: CountApplications = %d, %v", tc.name, count, err)
		}
	}

	shortlisted := base.Add(3 * time.Hour)
	first.Status = "shortlisted"
	first.ShortlistedAt = &shortlisted
	first.Notes = "strong resume"
	first.UpdatedAt = shortlisted
	if err := store.UpdateApplication(ctx, first); err != nil {
		t.Fatalf("UpdateApplication failed: %v", err)
	}
	updated, err := store.GetApplication(ctx, "a-1")
	if err != nil {
		t.Fatalf("GetApplication failed: %v", err)
	}
	if updated.Status != "shortlisted" || updated.Notes != "strong resume" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.ShortlistedAt == nil || !updated.ShortlistedAt.Equal(shortlisted) || updated.OfferedAt != nil {
		t.Fatalf("milestones not stored: %+v", updated)
	}
	if !updated.AppliedAt.Equal(base) {
		t.Fatalf("applied at changed to %v", updated.AppliedAt)
	}

	ghost := NewApplicationFixture("s-9", "j-9", WithApplicationID("ghost")).Persistence()
	if err := store.UpdateApplication(ctx, ghost); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating unknown application, got %v", err)
	}
}

func testMessageContract(t *testing.T, store persistence.Store) {
	ctx := context.Background()
	base := ReferenceTime()

	for i, id := range []string{"m-1", "m-2"} {
		msg := persistence.Message{
			ID:        id,
			Name:      "Visitor",
			Email:     "visitor@example.com",
			Subject:   "Drive dates",
			Body:      "When is the next drive?",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage(%s) failed: %v", id, err)
		}
	}

	msgs, err := store.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m-2" || msgs[1].ID != "m-1" {
		t.Fatalf("expected newest first, got %+v", msgs)
	}
	if msgs[1].Body != "When is the next drive?" || !msgs[1].CreatedAt.Equal(base) {
		t.Fatalf("message not stored: %+v", msgs[1])
	}
}
