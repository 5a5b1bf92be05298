package services

import (
	"fmt"
	"strings"
	"time"

	"buildlink-backend/config"
	"buildlink-backend/models"
	"buildlink-backend/repository"
	"buildlink-backend/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users  repository.UserRepository
	config *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{users: userRepo, config: cfg}
}

type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

func (s *AuthService) Register(in RegisterInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	if !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if in.Phone == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrValidation)
	}
	if len(in.Password) < 6 || len(in.Password) > 100 {
		return nil, fmt.Errorf("%w: password must be between 6 and 100 characters", ErrValidation)
	}
	if in.Role == "" {
		in.Role = models.RoleClient
	}
	if !models.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: role must be client, engineer or admin", ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(&models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Password:  string(hashed),
		Role:      in.Role,
		Active:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	u, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}
	if !u.Active {
		return "", nil, fmt.Errorf("%w: account is deactivated", ErrForbidden)
	}
	token, err := s.CreateToken(u)
	return token, u, err
}

func (s *AuthService) ChangePassword(userID int, oldPassword, newPassword string) error {
	if len(newPassword) < 6 || len(newPassword) > 100 {
		return fmt.Errorf("%w: new password must be between 6 and 100 characters", ErrValidation)
	}
	u, err := s.users.FindByID(userID)
	if err != nil {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrValidation)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(userID, string(hashed))
}

func (s *AuthService) GetUser(id int) (*models.User, error) {
	u, err := s.users.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return u, nil
}

func (s *AuthService) ListUsers() ([]models.User, error) {
	return s.users.List()
}

func (s *AuthService) CreateToken(u *models.User) (string, error) {
	expiry := time.Duration(s.config.JWTExpiry) * time.Hour
	return utils.GenerateJWT(s.config.JWTSecret, u.ID, u.DisplayName(), u.Role, expiry)
}

func (s *AuthService) ParseToken(token string) (int, string, string, error) {
	return utils.ParseJWT(s.config.JWTSecret, token)
}
