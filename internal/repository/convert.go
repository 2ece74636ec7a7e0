package repository

import (
	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/workflow"
)

func toApplicationUser(model persistence.User) application.User {
	user := application.User{
		ID:           model.ID,
		Name:         model.Name,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		Role:         application.Role(model.Role),
		Phone:        model.Phone,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	switch user.Role {
	case application.RoleStudent:
		user.Student = &application.StudentProfile{
			Department: model.Department,
			RollNumber: model.RollNumber,
			CGPA:       persistence.CloneFloat(model.CGPA),
		}
	case application.RoleRecruiter:
		user.Recruiter = &application.RecruiterProfile{Company: model.Company}
	}
	if model.ResumeFilename != "" {
		resume := &application.Resume{
			Filename: model.ResumeFilename,
			Path:     model.ResumePath,
			MimeType: model.ResumeMimeType,
			Size:     model.ResumeSize,
		}
		if model.ResumeUploadedAt != nil {
			resume.UploadedAt = *model.ResumeUploadedAt
		}
		user.Resume = resume
	}
	return user
}

func toPersistenceUser(user application.User) persistence.User {
	model := persistence.User{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		Phone:        user.Phone,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if user.Student != nil {
		model.Department = user.Student.Department
		model.RollNumber = user.Student.RollNumber
		model.CGPA = persistence.CloneFloat(user.Student.CGPA)
	}
	if user.Recruiter != nil {
		model.Company = user.Recruiter.Company
	}
	if user.Resume != nil {
		model.ResumeFilename = user.Resume.Filename
		model.ResumePath = user.Resume.Path
		model.ResumeMimeType = user.Resume.MimeType
		model.ResumeSize = user.Resume.Size
		uploaded := user.Resume.UploadedAt
		model.ResumeUploadedAt = &uploaded
	}
	return model
}

func toApplicationJob(model persistence.Job) application.Job {
	return application.Job{
		ID:           model.ID,
		Title:        model.Title,
		Company:      model.Company,
		Description:  model.Description,
		Requirements: model.Requirements,
		Salary:       model.Salary,
		Location:     model.Location,
		Deadline:     persistence.CloneTime(model.Deadline),
		MinCGPA:      model.MinCGPA,
		Branches:     append([]string(nil), model.Branches...),
		PostedBy:     model.PostedBy,
		CreatedAt:    model.CreatedAt,
	}
}

func toPersistenceJob(job application.Job) persistence.Job {
	return persistence.Job{
		ID:           job.ID,
		Title:        job.Title,
		Company:      job.Company,
		Description:  job.Description,
		Requirements: job.Requirements,
		Salary:       job.Salary,
		Location:     job.Location,
		Deadline:     persistence.CloneTime(job.Deadline),
		MinCGPA:      job.MinCGPA,
		Branches:     append([]string(nil), job.Branches...),
		PostedBy:     job.PostedBy,
		CreatedAt:    job.CreatedAt,
	}
}

func toApplicationApplication(model persistence.Application) application.Application {
	return application.Application{
		ID:            model.ID,
		StudentID:     model.StudentID,
		JobID:         model.JobID,
		Status:        workflow.Status(model.Status),
		AppliedAt:     model.AppliedAt,
		ShortlistedAt: persistence.CloneTime(model.ShortlistedAt),
		InterviewedAt: persistence.CloneTime(model.InterviewedAt),
		OfferedAt:     persistence.CloneTime(model.OfferedAt),
		RejectedAt:    persistence.CloneTime(model.RejectedAt),
		Notes:         model.Notes,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceApplication(app application.Application) persistence.Application {
	return persistence.Application{
		ID:            app.ID,
		StudentID:     app.StudentID,
		JobID:         app.JobID,
		Status:        string(app.Status),
		AppliedAt:     app.AppliedAt,
		ShortlistedAt: persistence.CloneTime(app.ShortlistedAt),
		InterviewedAt: persistence.CloneTime(app.InterviewedAt),
		OfferedAt:     persistence.CloneTime(app.OfferedAt),
		RejectedAt:    persistence.CloneTime(app.RejectedAt),
		Notes:         app.Notes,
		UpdatedAt:     app.UpdatedAt,
	}
}

func toPersistenceFilter(filter application.ApplicationFilter) persistence.ApplicationFilter {
	return persistence.ApplicationFilter{
		StudentID: filter.StudentID,
		JobIDs:    append([]string(nil), filter.JobIDs...),
		Status:    string(filter.Status),
	}
}
