package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/stats"
)

type userDTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Phone      string     `json:"phone,omitempty"`
	Department string     `json:"department,omitempty"`
	RollNumber string     `json:"rollNumber,omitempty"`
	CGPA       *float64   `json:"cgpa,omitempty"`
	Company    string     `json:"company,omitempty"`
	Resume     *resumeDTO `json:"resume,omitempty"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

type resumeDTO struct {
	Filename   string `json:"filename"`
	Path       string `json:"path,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploadedAt"`
}

func toUserDTO(user application.User) userDTO {
	dto := userDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Phone:     user.Phone,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
	if user.Student != nil {
		dto.Department = user.Student.Department
		dto.RollNumber = user.Student.RollNumber
		dto.CGPA = user.Student.CGPA
	}
	if user.Recruiter != nil {
		dto.Company = user.Recruiter.Company
	}
	if user.Resume != nil {
		dto.Resume = &resumeDTO{
			Filename:   user.Resume.Filename,
			Path:       user.Resume.Path,
			MimeType:   user.Resume.MimeType,
			Size:       user.Resume.Size,
			UploadedAt: formatTime(user.Resume.UploadedAt),
		}
	}
	return dto
}

type jobDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Requirements string   `json:"requirements,omitempty"`
	Salary       string   `json:"salary,omitempty"`
	SalaryLPA    float64  `json:"salaryLPA"`
	Location     string   `json:"location,omitempty"`
	Deadline     *string  `json:"deadline,omitempty"`
	MinCGPA      float64  `json:"minCGPA"`
	Branches     []string `json:"branches"`
	PostedBy     string   `json:"postedBy"`
	CreatedAt    string   `json:"createdAt"`
}

func toJobDTO(job application.Job) jobDTO {
	branches := job.Branches
	if branches == nil {
		branches = []string{}
	}
	return jobDTO{
		ID:           job.ID,
		Title:        job.Title,
		Company:      job.Company,
		Description:  job.Description,
		Requirements: job.Requirements,
		Salary:       job.Salary,
		SalaryLPA:    job.SalaryLPA,
		Location:     job.Location,
		Deadline:     formatOptionalTime(job.Deadline),
		MinCGPA:      job.MinCGPA,
		Branches:     branches,
		PostedBy:     job.PostedBy,
		CreatedAt:    formatTime(job.CreatedAt),
	}
}

func toJobDTOs(jobs []application.Job) []jobDTO {
	out := make([]jobDTO, len(jobs))
	for i, job := range jobs {
		out[i] = toJobDTO(job)
	}
	return out
}

type applicationDTO struct {
	ID            string             `json:"id"`
	StudentID     string             `json:"studentId"`
	JobID         string             `json:"jobId"`
	Status        string             `json:"status"`
	AppliedAt     string             `json:"appliedAt"`
	ShortlistedAt *string            `json:"shortlistedAt,omitempty"`
	InterviewedAt *string            `json:"interviewedAt,omitempty"`
	OfferedAt     *string            `json:"offeredAt,omitempty"`
	RejectedAt    *string            `json:"rejectedAt,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	UpdatedAt     string             `json:"updatedAt"`
	Job           *jobSummaryDTO     `json:"job,omitempty"`
	Student       *studentSummaryDTO `json:"student,omitempty"`
}

type jobSummaryDTO struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Company  string  `json:"company"`
	Location string  `json:"location,omitempty"`
	Deadline *string `json:"deadline,omitempty"`
}

type studentSummaryDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Department string   `json:"department,omitempty"`
	RollNumber string   `json:"rollNumber,omitempty"`
	CGPA       *float64 `json:"cgpa,omitempty"`
}

func toApplicationDTO(app application.Application) applicationDTO {
	return applicationDTO{
		ID:            app.ID,
		StudentID:     app.StudentID,
		JobID:         app.JobID,
		Status:        string(app.Status),
		AppliedAt:     formatTime(app.AppliedAt),
		ShortlistedAt: formatOptionalTime(app.ShortlistedAt),
		InterviewedAt: formatOptionalTime(app.InterviewedAt),
		OfferedAt:     formatOptionalTime(app.OfferedAt),
		RejectedAt:    formatOptionalTime(app.RejectedAt),
		Notes:         app.Notes,
		UpdatedAt:     formatTime(app.UpdatedAt),
	}
}

func toApplicationViewDTO(view application.ApplicationView) applicationDTO {
	dto := toApplicationDTO(view.Application)
	if view.Job != nil {
		dto.Job = &jobSummaryDTO{
			ID:       view.Job.ID,
			Title:    view.Job.Title,
			Company:  view.Job.Company,
			Location: view.Job.Location,
			Deadline: formatOptionalTime(view.Job.Deadline),
		}
	}
	if view.Student != nil {
		dto.Student = &studentSummaryDTO{
			ID:         view.Student.ID,
			Name:       view.Student.Name,
			Email:      view.Student.Email,
			Department: view.Student.Department,
			RollNumber: view.Student.RollNumber,
			CGPA:       view.Student.CGPA,
		}
	}
	return dto
}

func toApplicationViewDTOs(views []application.ApplicationView) []applicationDTO {
	out := make([]applicationDTO, len(views))
	for i, view := range views {
		out[i] = toApplicationViewDTO(view)
	}
	return out
}

type messageDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

func toMessageDTO(msg application.Message) messageDTO {
	return messageDTO{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Body,
		CreatedAt: formatTime(msg.CreatedAt),
	}
}

type reportDTO struct {
	TotalJobs                int                   `json:"totalJobs"`
	TotalApplications        int                   `json:"totalApplications"`
	ByStatus                 map[string]int        `json:"byStatus"`
	ByJob                    []jobCountDTO         `json:"byJob"`
	RecentByDate             []dayCountDTO         `json:"recentByDate"`
	OffersByDepartment       []departmentOffersDTO `json:"offersByDepartment"`
	PlacementPercentage      float64               `json:"placementPercentage"`
	TotalStudents            int                   `json:"totalStudents"`
	RegisteredStudentCount   int                   `json:"registeredStudentCount"`
	OfferedStudentCount      int                   `json:"offeredStudentCount"`
	OfferedApplicationsCount int                   `json:"offeredApplicationsCount"`
}

type jobCountDTO struct {
	JobID   string `json:"jobId"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Count   int    `json:"count"`
}

type dayCountDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type departmentOffersDTO struct {
	Department string              `json:"department"`
	Count      int                 `json:"count"`
	Students   []offeredStudentDTO `json:"students,omitempty"`
}

type offeredStudentDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	CGPA  *float64 `json:"cgpa,omitempty"`
}

func toReportDTO(report stats.Report) reportDTO {
	dto := reportDTO{
		TotalJobs:                report.TotalJobs,
		TotalApplications:        report.TotalApplications,
		ByStatus:                 make(map[string]int, len(report.ByStatus)),
		ByJob:                    make([]jobCountDTO, len(report.ByJob)),
		RecentByDate:             make([]dayCountDTO, len(report.RecentByDate)),
		OffersByDepartment:       make([]departmentOffersDTO, len(report.OffersByDepartment)),
		PlacementPercentage:      report.PlacementPercentage,
		TotalStudents:            report.TotalStudents,
		RegisteredStudentCount:   report.RegisteredStudentCount,
		OfferedStudentCount:      report.OfferedStudentCount,
		OfferedApplicationsCount: report.OfferedApplicationsCount,
	}
	for status, count := range report.ByStatus {
		dto.ByStatus[string(status)] = count
	}
	for i, job := range report.ByJob {
		dto.ByJob[i] = jobCountDTO{JobID: job.JobID, Title: job.Title, Company: job.Company, Count: job.Count}
	}
	for i, day := range report.RecentByDate {
		dto.RecentByDate[i] = dayCountDTO{Date: day.Date, Count: day.Count}
	}
	for i, dept := range report.OffersByDepartment {
		entry := departmentOffersDTO{Department: dept.Department, Count: dept.Count}
		for _, student := range dept.Students {
			entry.Students = append(entry.Students, offeredStudentDTO{
				ID: student.ID, Name: student.Name, Email: student.Email, CGPA: student.CGPA,
			})
		}
		dto.OffersByDepartment[i] = entry
	}
	return dto
}

type countersDTO struct {
	Students     int `json:"students"`
	Jobs         int `json:"jobs"`
	Applications int `json:"applications"`
	Offers       int `json:"offers"`
}

type countersResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Data        countersDTO `json:"data"`
	ComputedAt  *string     `json:"computedAt,omitempty"`
	Cached      bool        `json:"cached"`
	Fallback    bool        `json:"fallback,omitempty"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Timestamp   string      `json:"timestamp,omitempty"`
}

func toCountersResponse(result stats.Result) countersResponse {
	resp := countersResponse{
		Success: !result.Placeholder,
		Data: countersDTO{
			Students:     result.Data.Students,
			Jobs:         result.Data.Jobs,
			Applications: result.Data.Applications,
			Offers:       result.Data.Offers,
		},
		Cached:      result.Cached,
		Fallback:    result.Fallback,
		Placeholder: result.Placeholder,
	}
	if result.Placeholder {
		resp.Message = "statistics are temporarily unavailable"
	}
	if !result.ComputedAt.IsZero() {
		resp.ComputedAt = formatOptionalTime(&result.ComputedAt)
	}
	return resp
}

// stringList accepts either a JSON array of strings or one comma separated
// string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		var items []string
		for _, item := range strings.Split(joined, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*l = items
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.New("must be a list of strings")
	}
	*l = items
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

// parseDeadline accepts an RFC 3339 timestamp or a calendar date, which is
// read as midnight UTC.
func parseDeadline(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, errors.New("deadline must be a date or an RFC 3339 timestamp")
	}
	return &t, nil
}

const maxRequestBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}
