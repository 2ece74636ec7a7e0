package testfixtures

import (
	"context"
	"testing"

	"github.com/example/placement-portal/internal/application"
)

func TestServiceFactoryWiresServicesOverOneStore(t *testing.T) {
	ctx := context.Background()
	factory := NewServiceFactory()
	svc := factory.NewServices(t, NewMemoryStore(t))

	cgpa := 8.5
	student, err := svc.Auth.Register(ctx, application.RegisterParams{Input: application.RegistrationInput{
		Name: "Asha", Email: "asha@example.edu", Password: "secret1", Role: "student",
		Department: "Computer Science", RollNumber: "CS01", CGPA: &cgpa,
	}})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if student.ID != "user-1" {
		t.Fatalf("expected generated ID user-1, got %q", student.ID)
	}
	if !student.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), student.CreatedAt)
	}

	login, err := svc.Auth.Authenticate(ctx, application.AuthenticateParams{Email: "ASHA@example.edu", Password: "secret1"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	principal, err := svc.Auth.ValidateToken(ctx, login.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if principal.UserID != student.ID || principal.Role != application.RoleStudent {
		t.Fatalf("unexpected principal %+v", principal)
	}

	counters := svc.Stats.Counters(ctx)
	if counters.Data.Students != 1 {
		t.Fatalf("expected one student counted, got %+v", counters)
	}
}
