package application

import (
	"math"
	"net/mail"
	"strings"
	"time"
)

// Account holds the fields every role shares.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	CreatedAt    time.Time
}

// NewStudent builds a student user, requiring a department and roll number.
func NewStudent(acct Account, profile StudentProfile) (User, error) {
	acct = normalizeAccount(acct)
	profile.Department = strings.TrimSpace(profile.Department)
	profile.RollNumber = strings.TrimSpace(profile.RollNumber)

	vErr := validateAccount(acct)
	vErr.merge(validateStudentProfile(profile))
	if vErr.HasErrors() {
		return User{}, vErr
	}

	user := newUser(acct, RoleStudent)
	user.Student = &profile
	return user, nil
}

// NewRecruiter builds a recruiter user, requiring a company.
func NewRecruiter(acct Account, profile RecruiterProfile) (User, error) {
	acct = normalizeAccount(acct)
	profile.Company = strings.TrimSpace(profile.Company)

	vErr := validateAccount(acct)
	if profile.Company == "" {
		vErr.add("company", "company is required")
	}
	if vErr.HasErrors() {
		return User{}, vErr
	}

	user := newUser(acct, RoleRecruiter)
	user.Recruiter = &profile
	return user, nil
}

// NewOfficer builds a placement officer user.
func NewOfficer(acct Account) (User, error) {
	acct = normalizeAccount(acct)
	if vErr := validateAccount(acct); vErr.HasErrors() {
		return User{}, vErr
	}
	return newUser(acct, RoleOfficer), nil
}

func newUser(acct Account, role Role) User {
	return User{
		ID:           acct.ID,
		Name:         acct.Name,
		Email:        acct.Email,
		PasswordHash: acct.PasswordHash,
		Role:         role,
		Phone:        acct.Phone,
		CreatedAt:    acct.CreatedAt,
		UpdatedAt:    acct.CreatedAt,
	}
}

func normalizeAccount(acct Account) Account {
	acct.Name = strings.TrimSpace(acct.Name)
	acct.Email = normalizeEmail(acct.Email)
	acct.Phone = strings.TrimSpace(acct.Phone)
	return acct
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateAccount(acct Account) *ValidationError {
	vErr := &ValidationError{}
	if acct.Name == "" {
		vErr.add("name", "name is required")
	}
	if msg := validateEmail(acct.Email); msg != "" {
		vErr.add("email", msg)
	}
	return vErr
}

func validateEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "email is invalid"
	}
	return ""
}

func validateStudentProfile(profile StudentProfile) *ValidationError {
	vErr := &ValidationError{}
	if profile.Department == "" {
		vErr.add("department", "department is required")
	}
	if profile.RollNumber == "" {
		vErr.add("rollNumber", "roll number is required")
	}
	if profile.CGPA != nil && !validCGPA(*profile.CGPA) {
		vErr.add("cgpa", "cgpa must be between 0 and 10")
	}
	return vErr
}

func validCGPA(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 10
}
