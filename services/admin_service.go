package services

import (
	"fmt"

	"buildlink-backend/models"
	"buildlink-backend/repository"
)

// AdminService holds the moderation operations reserved for admin accounts.
type AdminService struct {
	users   repository.UserRepository
	reviews repository.ReviewRepository
}

func NewAdminService(ur repository.UserRepository, rr repository.ReviewRepository) *AdminService {
	return &AdminService{users: ur, reviews: rr}
}

// SetUserActive flips a user's access. Deactivation blocks new logins;
// already-issued tokens stay valid until they expire.
func (s *AdminService) SetUserActive(userID int, active bool) (*models.User, error) {
	u, err := s.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if u.Role == models.RoleAdmin && !active {
		return nil, fmt.Errorf("%w: admin accounts cannot be deactivated", ErrValidation)
	}
	if err := s.users.SetActive(userID, active); err != nil {
		return nil, err
	}
	u.Active = active
	return u, nil
}

// RemoveReview deletes a review regardless of who wrote it.
func (s *AdminService) RemoveReview(reviewID int) error {
	if _, err := s.reviews.FindByID(reviewID); err != nil {
		return fmt.Errorf("%w: review", ErrNotFound)
	}
	return s.reviews.Delete(reviewID)
}
