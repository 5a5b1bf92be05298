package services

import (
	"errors"
	"testing"

	"buildlink-backend/config"
	"buildlink-backend/models"
	"buildlink-backend/repository"
)

func newTestAuthService() *AuthService {
	cfg := config.Config{JWTSecret: "test-secret", JWTExpiry: 1}
	return NewAuthService(repository.NewInMemoryUserRepo(), &cfg)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Phone:     "555-0101",
		Password:  "s3cret-pw",
		Role:      models.RoleEngineer,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()

	user, err := svc.Register(validRegistration())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == 0 || user.DisplayName() != "Grace Hopper" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.Password == "s3cret-pw" {
		t.Fatal("password must be stored hashed")
	}

	token, logged, err := svc.Login("grace@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned wrong user: %+v", logged)
	}

	uid, name, role, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if uid != user.ID || name != "Grace Hopper" || role != models.RoleEngineer {
		t.Fatalf("token claims mismatch: uid=%d name=%q role=%q", uid, name, role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService()

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = " " }},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"missing phone", func(in *RegisterInput) { in.Phone = "" }},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }},
		{"unknown role", func(in *RegisterInput) { in.Role = "wizard" }},
	}
	for _, tc := range cases {
		in := validRegistration()
		tc.mutate(&in)
		if _, err := svc.Register(in); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestRegisterDefaultsRoleToClient(t *testing.T) {
	svc := newTestAuthService()
	in := validRegistration()
	in.Role = ""

	user, err := svc.Register(in)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != models.RoleClient {
		t.Fatalf("expected default role client, got %q", user.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	if _, err := svc.Register(validRegistration()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.Register(validRegistration()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected duplicate email rejection, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService()
	if _, err := svc.Register(validRegistration()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, _, err := svc.Login("grace@example.com", "wrong"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "s3cret-pw"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestAuthService()
	user, err := svc.Register(validRegistration())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong", "new-password"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rejection with wrong current password, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "s3cret-pw", "new-password"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, _, err := svc.Login("grace@example.com", "new-password"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login("grace@example.com", "s3cret-pw"); err == nil {
		t.Fatal("old password should no longer work")
	}
}
