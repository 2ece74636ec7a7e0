package application

import (
	"strings"
	"time"

	"github.com/example/placement-portal/internal/workflow"
)

// Role is the closed set of account kinds.
type Role string

const (
	RoleStudent   Role = "student"
	RoleOfficer   Role = "officer"
	RoleRecruiter Role = "recruiter"
)

// ParseRole resolves a user supplied role name.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleStudent, RoleOfficer, RoleRecruiter:
		return role, true
	}
	return "", false
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
	Name   string
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}

// StudentProfile holds the fields only students carry.
type StudentProfile struct {
	Department string
	RollNumber string
	CGPA       *float64
}

// RecruiterProfile holds the fields only recruiters carry.
type RecruiterProfile struct {
	Company string
}

// Resume is metadata about an uploaded resume file.
type Resume struct {
	Filename   string
	Path       string
	MimeType   string
	Size       int64
	UploadedAt time.Time
}

// User is an account. Exactly one of Student and Recruiter is set for those
// roles; officers carry neither.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        string
	Student      *StudentProfile
	Recruiter    *RecruiterProfile
	Resume       *Resume
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Department returns the student department, or "" for other roles.
func (u User) Department() string {
	if u.Student == nil {
		return ""
	}
	return u.Student.Department
}

// CGPA returns the student CGPA when recorded.
func (u User) CGPA() *float64 {
	if u.Student == nil {
		return nil
	}
	return u.Student.CGPA
}

// Job is an opening posted by an officer.
type Job struct {
	ID           string
	Title        string
	Company      string
	Description  string
	Requirements string
	Salary       string
	SalaryLPA    float64
	Location     string
	Deadline     *time.Time
	MinCGPA      float64
	Branches     []string
	PostedBy     string
	CreatedAt    time.Time
}

// Application is a student's application to a job.
type Application struct {
	ID            string
	StudentID     string
	JobID         string
	Status        workflow.Status
	AppliedAt     time.Time
	ShortlistedAt *time.Time
	InterviewedAt *time.Time
	OfferedAt     *time.Time
	RejectedAt    *time.Time
	Notes         string
	UpdatedAt     time.Time
}

func (a Application) workflowState() workflow.State {
	return workflow.State{
		Status:        a.Status,
		ShortlistedAt: a.ShortlistedAt,
		InterviewedAt: a.InterviewedAt,
		OfferedAt:     a.OfferedAt,
		RejectedAt:    a.RejectedAt,
	}
}

func (a Application) withWorkflowState(state workflow.State) Application {
	a.Status = state.Status
	a.ShortlistedAt = state.ShortlistedAt
	a.InterviewedAt = state.InterviewedAt
	a.OfferedAt = state.OfferedAt
	a.RejectedAt = state.RejectedAt
	return a
}

// JobSummary is the job part embedded in application listings.
type JobSummary struct {
	ID       string
	Title    string
	Company  string
	Location string
	Deadline *time.Time
}

// StudentSummary is the student part embedded in application listings.
type StudentSummary struct {
	ID         string
	Name       string
	Email      string
	Department string
	RollNumber string
	CGPA       *float64
}

// ApplicationView is an application with its job and student resolved.
// Either summary is nil when the referenced record no longer exists.
type ApplicationView struct {
	Application
	Job     *JobSummary
	Student *StudentSummary
}

// Message is a contact form submission.
type Message struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// RegistrationInput captures the fields of a sign up request.
type RegistrationInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	RollNumber string
	CGPA       *float64
	Phone      string
	Company    string
}

// RegisterParams wraps a registration request.
type RegisterParams struct {
	Input RegistrationInput
}

// AuthenticateParams wraps a login request.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult is returned by a successful login.
type AuthenticateResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	Name       *string
	Phone      *string
	Department *string
	RollNumber *string
	CGPA       *float64
	Company    *string
}

// UpdateProfileParams wraps a profile update.
type UpdateProfileParams struct {
	Principal Principal
	Input     ProfileInput
}

// ResumeInput describes an uploaded resume.
type ResumeInput struct {
	Filename string
	Path     string
	MimeType string
	Size     int64
}

// AttachResumeParams wraps a resume metadata update.
type AttachResumeParams struct {
	Principal Principal
	Input     ResumeInput
}

// JobInput captures caller provided job fields.
type JobInput struct {
	Title        string
	Company      string
	Description  string
	Requirements string
	Salary       string
	Location     string
	Deadline     *time.Time
	MinCGPA      float64
	Branches     []string
}

// CreateJobParams wraps the data required to post a job.
type CreateJobParams struct {
	Principal Principal
	Input     JobInput
}

// ApplyParams wraps an application request.
type ApplyParams struct {
	Principal Principal
	JobID     string
}

// TransitionParams wraps a status change request.
type TransitionParams struct {
	Principal     Principal
	ApplicationID string
	Status        string
}

// AnnotateParams wraps a notes update.
type AnnotateParams struct {
	Principal     Principal
	ApplicationID string
	Notes         string
}

// MessageInput captures a contact form submission.
type MessageInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}
