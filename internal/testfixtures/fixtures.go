// Package testfixtures offers deterministic records, clocks and store
// harnesses shared by the test suites.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/workflow"
)

var (
	userCounter        uint64
	jobCounter         uint64
	applicationCounter uint64
)

var referenceTime = time.Date(2025, time.August, 4, 10, 30, 0, 0, time.UTC)

// ReferenceTime returns the baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture is a deterministic account of any role.
type UserFixture struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         application.Role
	Phone        string
	Department   string
	RollNumber   string
	CGPA         *float64
	Company      string
	CreatedAt    time.Time
}

// UserOption configures a user fixture.
type UserOption func(*UserFixture)

// NewStudentFixture returns a CSE student with a CGPA of 8.
func NewStudentFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	cgpa := 8.0
	fixture := newUserFixture(idx, application.RoleStudent)
	fixture.Department = "CSE"
	fixture.RollNumber = fmt.Sprintf("R%04d", idx)
	fixture.CGPA = &cgpa
	return applyUserOptions(fixture, opts)
}

// NewOfficerFixture returns a placement officer.
func NewOfficerFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	return applyUserOptions(newUserFixture(idx, application.RoleOfficer), opts)
}

// NewRecruiterFixture returns a recruiter at Acme.
func NewRecruiterFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	fixture := newUserFixture(idx, application.RoleRecruiter)
	fixture.Company = "Acme"
	return applyUserOptions(fixture, opts)
}

func newUserFixture(idx uint64, role application.Role) UserFixture {
	id := fmt.Sprintf("user-%03d", idx)
	return UserFixture{
		ID:           id,
		Name:         fmt.Sprintf("User %03d", idx),
		Email:        fmt.Sprintf("%s@example.edu", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         role,
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
}

func applyUserOptions(fixture UserFixture, opts []UserOption) UserFixture {
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

// WithUserEmail overrides the generated email.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

// WithUserName overrides the generated name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) { f.Name = name }
}

// WithDepartment sets the student department.
func WithDepartment(department string) UserOption {
	return func(f *UserFixture) { f.Department = department }
}

// WithCGPA sets the student CGPA. A nil value clears it.
func WithCGPA(cgpa *float64) UserOption {
	return func(f *UserFixture) { f.CGPA = cgpa }
}

// WithUserCreatedAt sets the creation timestamp.
func WithUserCreatedAt(t time.Time) UserOption {
	return func(f *UserFixture) { f.CreatedAt = t }
}

// Application returns the fixture as an application.User.
func (f UserFixture) Application() application.User {
	user := application.User{
		ID:           f.ID,
		Name:         f.Name,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		Role:         f.Role,
		Phone:        f.Phone,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.CreatedAt,
	}
	switch f.Role {
	case application.RoleStudent:
		user.Student = &application.StudentProfile{
			Department: f.Department,
			RollNumber: f.RollNumber,
			CGPA:       persistence.CloneFloat(f.CGPA),
		}
	case application.RoleRecruiter:
		user.Recruiter = &application.RecruiterProfile{Company: f.Company}
	}
	return user
}

// Persistence returns the fixture as a persistence.User.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Name:         f.Name,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		Role:         string(f.Role),
		Phone:        f.Phone,
		Department:   f.Department,
		RollNumber:   f.RollNumber,
		CGPA:         persistence.CloneFloat(f.CGPA),
		Company:      f.Company,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.CreatedAt,
	}
}

// Principal returns the identity of the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Role: f.Role, Name: f.Name}
}

// ----------------------------- Job fixtures ------------------------------

// JobFixture is a deterministic job opening.
type JobFixture struct {
	ID        string
	Title     string
	Company   string
	Salary    string
	Location  string
	Deadline  *time.Time
	MinCGPA   float64
	Branches  []string
	PostedBy  string
	CreatedAt time.Time
}

// JobOption configures a job fixture.
type JobOption func(*JobFixture)

// NewJobFixture returns an open job with no eligibility restrictions.
func NewJobFixture(opts ...JobOption) JobFixture {
	idx := atomic.AddUint64(&jobCounter, 1)
	fixture := JobFixture{
		ID:        fmt.Sprintf("job-%03d", idx),
		Title:     fmt.Sprintf("Engineer %03d", idx),
		Company:   "Acme",
		Salary:    "12 LPA",
		Location:  "Pune",
		PostedBy:  "officer-1",
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithJobID overrides the generated ID.
func WithJobID(id string) JobOption {
	return func(f *JobFixture) { f.ID = id }
}

// WithPostedBy sets the owning officer.
func WithPostedBy(officerID string) JobOption {
	return func(f *JobFixture) { f.PostedBy = officerID }
}

// WithDeadline sets the application deadline.
func WithDeadline(deadline time.Time) JobOption {
	return func(f *JobFixture) { f.Deadline = &deadline }
}

// WithMinCGPA sets the CGPA requirement.
func WithMinCGPA(min float64) JobOption {
	return func(f *JobFixture) { f.MinCGPA = min }
}

// WithBranches sets the eligible branches.
func WithBranches(branches ...string) JobOption {
	return func(f *JobFixture) { f.Branches = branches }
}

// WithJobCreatedAt sets the posting timestamp.
func WithJobCreatedAt(t time.Time) JobOption {
	return func(f *JobFixture) { f.CreatedAt = t }
}

// Application returns the fixture as an application.Job.
func (f JobFixture) Application() application.Job {
	return application.Job{
		ID:          f.ID,
		Title:       f.Title,
		Company:     f.Company,
		Description: "Build things",
		Salary:      f.Salary,
		Location:    f.Location,
		Deadline:    persistence.CloneTime(f.Deadline),
		MinCGPA:     f.MinCGPA,
		Branches:    append([]string(nil), f.Branches...),
		PostedBy:    f.PostedBy,
		CreatedAt:   f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Job.
func (f JobFixture) Persistence() persistence.Job {
	return persistence.Job{
		ID:          f.ID,
		Title:       f.Title,
		Company:     f.Company,
		Description: "Build things",
		Salary:      f.Salary,
		Location:    f.Location,
		Deadline:    persistence.CloneTime(f.Deadline),
		MinCGPA:     f.MinCGPA,
		Branches:    append([]string(nil), f.Branches...),
		PostedBy:    f.PostedBy,
		CreatedAt:   f.CreatedAt,
	}
}

// ------------------------- Application fixtures --------------------------

// ApplicationFixture is a deterministic application in the applied state.
type ApplicationFixture struct {
	ID        string
	StudentID string
	JobID     string
	Status    workflow.Status
	AppliedAt time.Time
	OfferedAt *time.Time
	Notes     string
}

// ApplicationOption configures an application fixture.
type ApplicationOption func(*ApplicationFixture)

// NewApplicationFixture returns an applied application of studentID to jobID.
func NewApplicationFixture(studentID, jobID string, opts ...ApplicationOption) ApplicationFixture {
	idx := atomic.AddUint64(&applicationCounter, 1)
	fixture := ApplicationFixture{
		ID:        fmt.Sprintf("app-%03d", idx),
		StudentID: studentID,
		JobID:     jobID,
		Status:    workflow.StatusApplied,
		AppliedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithApplicationID overrides the generated ID.
func WithApplicationID(id string) ApplicationOption {
	return func(f *ApplicationFixture) { f.ID = id }
}

// WithAppliedAt sets the submission timestamp.
func WithAppliedAt(t time.Time) ApplicationOption {
	return func(f *ApplicationFixture) { f.AppliedAt = t }
}

// WithOffer marks the application offered at t.
func WithOffer(t time.Time) ApplicationOption {
	return func(f *ApplicationFixture) {
		f.Status = workflow.StatusOffered
		f.OfferedAt = &t
	}
}

// Application returns the fixture as an application.Application.
func (f ApplicationFixture) Application() application.Application {
	return application.Application{
		ID:        f.ID,
		StudentID: f.StudentID,
		JobID:     f.JobID,
		Status:    f.Status,
		AppliedAt: f.AppliedAt,
		OfferedAt: persistence.CloneTime(f.OfferedAt),
		Notes:     f.Notes,
		UpdatedAt: f.AppliedAt,
	}
}

// Persistence returns the fixture as a persistence.Application.
func (f ApplicationFixture) Persistence() persistence.Application {
	return persistence.Application{
		ID:        f.ID,
		StudentID: f.StudentID,
		JobID:     f.JobID,
		Status:    string(f.Status),
		AppliedAt: f.AppliedAt,
		OfferedAt: persistence.CloneTime(f.OfferedAt),
		Notes:     f.Notes,
		UpdatedAt: f.AppliedAt,
	}
}
