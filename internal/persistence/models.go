package persistence

import "time"

// User is a stored account. Student and recruiter columns are empty for
// other roles.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Phone        string

	Department string
	RollNumber string
	CGPA       *float64
	Company    string

	ResumeFilename   string
	ResumePath       string
	ResumeMimeType   string
	ResumeSize       int64
	ResumeUploadedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Job is a stored job posting.
type Job struct {
	ID           string
	Title        string
	Company      string
	Description  string
	Requirements string
	Salary       string
	Location     string
	Deadline     *time.Time
	MinCGPA      float64
	Branches     []string
	PostedBy     string
	CreatedAt    time.Time
}

// Application is a stored application. Status holds the workflow status name.
type Application struct {
	ID            string
	StudentID     string
	JobID         string
	Status        string
	AppliedAt     time.Time
	ShortlistedAt *time.Time
	InterviewedAt *time.Time
	OfferedAt     *time.Time
	RejectedAt    *time.Time
	Notes         string
	UpdatedAt     time.Time
}

// Message is a stored contact form submission.
type Message struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// CloneTime copies an optional timestamp.
func CloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

// CloneFloat copies an optional number.
func CloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
