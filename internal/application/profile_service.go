package application

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// MaxResumeSize is the largest resume accepted, in bytes.
const MaxResumeSize = 5 << 20

// ProfileService lets users read and edit their own account.
type ProfileService struct {
	users  UserRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewProfileService constructs a profile service.
func NewProfileService(users UserRepository, now func() time.Time) *ProfileService {
	return NewProfileServiceWithLogger(users, now, nil)
}

// NewProfileServiceWithLogger constructs a profile service with a specified logger.
func NewProfileServiceWithLogger(users UserRepository, now func() time.Time, logger *slog.Logger) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{users: users, now: now, logger: defaultLogger(logger)}
}

func (s *ProfileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfileService", operation, attrs...)
}

// GetProfile returns the caller's account.
func (s *ProfileService) GetProfile(ctx context.Context, principal Principal) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("profile service not configured")
	}
	if err := Authorize(principal, ActionViewProfile); err != nil {
		return User{}, err
	}
	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's account.
func (s *ProfileService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (user User, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("profile service not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateProfile", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	if err = Authorize(params.Principal, ActionUpdateProfile); err != nil {
		return
	}

	var existing User
	existing, err = s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	updated, vErr := applyProfileInput(existing, params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	updated.UpdatedAt = s.now()

	user, err = s.users.UpdateUser(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// AttachResume records metadata of an uploaded PDF resume.
func (s *ProfileService) AttachResume(ctx context.Context, params AttachResumeParams) (user User, err error) {
	if s == nil || s.users == nil {
		err = fmt.Errorf("profile service not configured")
		return
	}

	logger := s.loggerWith(ctx, "AttachResume", "principal_id", params.Principal.UserID, "size", params.Input.Size)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to attach resume", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "resume attached")
	}()

	if err = Authorize(params.Principal, ActionAttachResume); err != nil {
		return
	}

	input := params.Input
	vErr := validateResume(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing User
	existing, err = s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	now := s.now()
	existing.Resume = &Resume{
		Filename:   strings.TrimSpace(input.Filename),
		Path:       strings.TrimSpace(input.Path),
		MimeType:   "application/pdf",
		Size:       input.Size,
		UploadedAt: now,
	}
	existing.UpdatedAt = now

	user, err = s.users.UpdateUser(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

func applyProfileInput(user User, input ProfileInput) (User, *ValidationError) {
	vErr := &ValidationError{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			vErr.add("name", "name is required")
		}
		user.Name = name
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}

	studentFields := input.Department != nil || input.RollNumber != nil || input.CGPA != nil
	if studentFields && user.Role != RoleStudent {
		vErr.add("department", "academic details apply to students only")
	}
	if input.Company != nil && user.Role != RoleRecruiter {
		vErr.add("company", "company applies to recruiters only")
	}
	if vErr.HasErrors() {
		return user, vErr
	}

	if user.Role == RoleStudent && studentFields {
		profile := StudentProfile{}
		if user.Student != nil {
			profile = *user.Student
		}
		if input.Department != nil {
			profile.Department = strings.TrimSpace(*input.Department)
		}
		if input.RollNumber != nil {
			profile.RollNumber = strings.TrimSpace(*input.RollNumber)
		}
		if input.CGPA != nil {
			cgpa := *input.CGPA
			profile.CGPA = &cgpa
		}
		vErr.merge(validateStudentProfile(profile))
		user.Student = &profile
	}
	if user.Role == RoleRecruiter && input.Company != nil {
		company := strings.TrimSpace(*input.Company)
		if company == "" {
			vErr.add("company", "company is required")
		}
		user.Recruiter = &RecruiterProfile{Company: company}
	}

	return user, vErr
}

func validateResume(input ResumeInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Filename) == "" {
		vErr.add("filename", "filename is required")
	}
	mime := strings.ToLower(strings.TrimSpace(input.MimeType))
	ext := strings.ToLower(filepath.Ext(input.Filename))
	if mime != "application/pdf" && ext != ".pdf" {
		vErr.add("mimeType", "only PDF files are allowed")
	}
	if input.Size <= 0 {
		vErr.add("size", "file is empty")
	} else if input.Size > MaxResumeSize {
		vErr.add("size", "file exceeds the 5MB limit")
	}
	return vErr
}
