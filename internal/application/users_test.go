package application

import (
	"errors"
	"testing"
	"time"
)

func TestRoleConstructors(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, time.January, 5, 8, 0, 0, 0, time.UTC)
	acct := Account{ID: "u-1", Name: " Asha ", Email: " Asha@Example.EDU ", PasswordHash: "hash", CreatedAt: created}

	t.Run("student requires department and roll number", func(t *testing.T) {
		_, err := NewStudent(acct, StudentProfile{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"department", "rollNumber"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("student rejects out of range cgpa", func(t *testing.T) {
		bad := 11.0
		_, err := NewStudent(acct, StudentProfile{Department: "CSE", RollNumber: "1", CGPA: &bad})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["cgpa"] == "" {
			t.Fatalf("expected cgpa error, got %v", err)
		}
	})

	t.Run("student is normalized", func(t *testing.T) {
		user, err := NewStudent(acct, StudentProfile{Department: " CSE ", RollNumber: " 1RV20CS001 "})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Role != RoleStudent || user.Email != "asha@example.edu" || user.Name != "Asha" {
			t.Fatalf("unexpected user %+v", user)
		}
		if user.Student == nil || user.Student.RollNumber != "1RV20CS001" || user.Recruiter != nil {
			t.Fatalf("unexpected profile %+v", user.Student)
		}
		if !user.UpdatedAt.Equal(created) {
			t.Fatalf("expected UpdatedAt to match CreatedAt")
		}
	})

	t.Run("recruiter requires company", func(t *testing.T) {
		if _, err := NewRecruiter(acct, RecruiterProfile{Company: "  "}); err == nil {
			t.Fatalf("expected company validation error")
		}
		user, err := NewRecruiter(acct, RecruiterProfile{Company: "Acme"})
		if err != nil || user.Recruiter == nil || user.Student != nil {
			t.Fatalf("unexpected recruiter %+v, %v", user, err)
		}
	})

	t.Run("officer validates email", func(t *testing.T) {
		_, err := NewOfficer(Account{Name: "Officer", Email: "not-an-email"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["email"] != "email is invalid" {
			t.Fatalf("expected invalid email error, got %v", err)
		}
		user, err := NewOfficer(Account{Name: "Officer", Email: "tpo@example.edu"})
		if err != nil || user.Role != RoleOfficer || user.Student != nil || user.Recruiter != nil {
			t.Fatalf("unexpected officer %+v, %v", user, err)
		}
	})
}
