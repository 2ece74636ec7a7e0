package mongo

import (
	"time"

	"github.com/example/placement-portal/internal/persistence"
)

type userDocument struct {
	ID               string     `bson:"_id"`
	Name             string     `bson:"name"`
	Email            string     `bson:"email"`
	PasswordHash     string     `bson:"password_hash"`
	Role             string     `bson:"role"`
	Phone            string     `bson:"phone,omitempty"`
	Department       string     `bson:"department,omitempty"`
	RollNumber       string     `bson:"roll_number,omitempty"`
	CGPA             *float64   `bson:"cgpa,omitempty"`
	Company          string     `bson:"company,omitempty"`
	ResumeFilename   string     `bson:"resume_filename,omitempty"`
	ResumePath       string     `bson:"resume_path,omitempty"`
	ResumeMimeType   string     `bson:"resume_mime_type,omitempty"`
	ResumeSize       int64      `bson:"resume_size,omitempty"`
	ResumeUploadedAt *time.Time `bson:"resume_uploaded_at,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}

func newUserDocument(u persistence.User) userDocument {
	return userDocument{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             u.Role,
		Phone:            u.Phone,
		Department:       u.Department,
		RollNumber:       u.RollNumber,
		CGPA:             persistence.CloneFloat(u.CGPA),
		Company:          u.Company,
		ResumeFilename:   u.ResumeFilename,
		ResumePath:       u.ResumePath,
		ResumeMimeType:   u.ResumeMimeType,
		ResumeSize:       u.ResumeSize,
		ResumeUploadedAt: utcPointer(u.ResumeUploadedAt),
		CreatedAt:        u.CreatedAt.UTC(),
		UpdatedAt:        u.UpdatedAt.UTC(),
	}
}

func (d userDocument) record() persistence.User {
	return persistence.User{
		ID:               d.ID,
		Name:             d.Name,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		Role:             d.Role,
		Phone:            d.Phone,
		Department:       d.Department,
		RollNumber:       d.RollNumber,
		CGPA:             d.CGPA,
		Company:          d.Company,
		ResumeFilename:   d.ResumeFilename,
		ResumePath:       d.ResumePath,
		ResumeMimeType:   d.ResumeMimeType,
		ResumeSize:       d.ResumeSize,
		ResumeUploadedAt: utcPointer(d.ResumeUploadedAt),
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

type jobDocument struct {
	ID           string     `bson:"_id"`
	Title        string     `bson:"title"`
	Company      string     `bson:"company"`
	Description  string     `bson:"description"`
	Requirements string     `bson:"requirements,omitempty"`
	Salary       string     `bson:"salary,omitempty"`
	Location     string     `bson:"location,omitempty"`
	Deadline     *time.Time `bson:"deadline,omitempty"`
	MinCGPA      float64    `bson:"min_cgpa"`
	Branches     []string   `bson:"branches"`
	PostedBy     string     `bson:"posted_by"`
	CreatedAt    time.Time  `bson:"created_at"`
}

func newJobDocument(j persistence.Job) jobDocument {
	branches := append([]string{}, j.Branches...)
	return jobDocument{
		ID:           j.ID,
		Title:        j.Title,
		Company:      j.Company,
		Description:  j.Description,
		Requirements: j.Requirements,
		Salary:       j.Salary,
		Location:     j.Location,
		Deadline:     utcPointer(j.Deadline),
		MinCGPA:      j.MinCGPA,
		Branches:     branches,
		PostedBy:     j.PostedBy,
		CreatedAt:    j.CreatedAt.UTC(),
	}
}

func (d jobDocument) record() persistence.Job {
	var branches []string
	if len(d.Branches) > 0 {
		branches = d.Branches
	}
	return persistence.Job{
		ID:           d.ID,
		Title:        d.Title,
		Company:      d.Company,
		Description:  d.Description,
		Requirements: d.Requirements,
		Salary:       d.Salary,
		Location:     d.Location,
		Deadline:     utcPointer(d.Deadline),
		MinCGPA:      d.MinCGPA,
		Branches:     branches,
		PostedBy:     d.PostedBy,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type applicationDocument struct {
	ID            string     `bson:"_id"`
	StudentID     string     `bson:"student_id"`
	JobID         string     `bson:"job_id"`
	Status        string     `bson:"status"`
	AppliedAt     time.Time  `bson:"applied_at"`
	ShortlistedAt *time.Time `bson:"shortlisted_at,omitempty"`
	InterviewedAt *time.Time `bson:"interviewed_at,omitempty"`
	OfferedAt     *time.Time `bson:"offered_at,omitempty"`
	RejectedAt    *time.Time `bson:"rejected_at,omitempty"`
	Notes         string     `bson:"notes,omitempty"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

func newApplicationDocument(a persistence.Application) applicationDocument {
	return applicationDocument{
		ID:            a.ID,
		StudentID:     a.StudentID,
		JobID:         a.JobID,
		Status:        a.Status,
		AppliedAt:     a.AppliedAt.UTC(),
		ShortlistedAt: utcPointer(a.ShortlistedAt),
		InterviewedAt: utcPointer(a.InterviewedAt),
		OfferedAt:     utcPointer(a.OfferedAt),
		RejectedAt:    utcPointer(a.RejectedAt),
		Notes:         a.Notes,
		UpdatedAt:     a.UpdatedAt.UTC(),
	}
}

func (d applicationDocument) record() persistence.Application {
	return persistence.Application{
		ID:            d.ID,
		StudentID:     d.StudentID,
		JobID:         d.JobID,
		Status:        d.Status,
		AppliedAt:     d.AppliedAt.UTC(),
		ShortlistedAt: utcPointer(d.ShortlistedAt),
		InterviewedAt: utcPointer(d.InterviewedAt),
		OfferedAt:     utcPointer(d.OfferedAt),
		RejectedAt:    utcPointer(d.RejectedAt),
		Notes:         d.Notes,
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

type messageDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Subject   string    `bson:"subject"`
	Body      string    `bson:"body"`
	CreatedAt time.Time `bson:"created_at"`
}

func utcPointer(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
