package services

import (
	"fmt"
	"strings"

	"buildlink-backend/models"
	"buildlink-backend/repository"
)

type ReviewService struct {
	reviews repository.ReviewRepository
	users   repository.UserRepository
}

func NewReviewService(rr repository.ReviewRepository, ur repository.UserRepository) *ReviewService {
	return &ReviewService{reviews: rr, users: ur}
}

func (s *ReviewService) List() ([]models.Review, error) {
	reviews, err := s.reviews.List()
	if err != nil {
		return nil, err
	}
	s.resolveNames(reviews)
	return reviews, nil
}

// ListForEngineer returns reviews written about one engineer, newest first.
func (s *ReviewService) ListForEngineer(engineerID int) ([]models.Review, error) {
	engineer, err := s.users.FindByID(engineerID)
	if err != nil {
		return nil, fmt.Errorf("%w: engineer", ErrNotFound)
	}
	if engineer.Role != models.RoleEngineer {
		return nil, fmt.Errorf("%w: reviews can only be viewed for engineers", ErrValidation)
	}

	reviews, err := s.reviews.ListForUser(engineerID)
	if err != nil {
		return nil, err
	}
	s.resolveNames(reviews)
	return reviews, nil
}

func (s *ReviewService) Create(fromUserID, engineerID int, text string, rating int) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: review text is required", ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	engineer, err := s.users.FindByID(engineerID)
	if err != nil {
		return nil, fmt.Errorf("%w: engineer not found", ErrValidation)
	}
	if engineer.Role != models.RoleEngineer {
		return nil, fmt.Errorf("%w: selected user is not an engineer", ErrValidation)
	}
	if _, err := s.reviews.FindByPair(fromUserID, engineerID); err == nil {
		return nil, fmt.Errorf("%w: you have already reviewed this engineer", ErrValidation)
	}

	review, err := s.reviews.Create(&models.Review{
		FromUserID: fromUserID,
		ToUserID:   engineerID,
		ReviewText: text,
		Rating:     rating,
	})
	if err != nil {
		return nil, err
	}
	out := []models.Review{*review}
	s.resolveNames(out)
	return &out[0], nil
}

func (s *ReviewService) Update(reviewID, fromUserID int, text string, rating int) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: review text is required", ErrValidation)
	}

	review, err := s.reviews.FindByID(reviewID)
	if err != nil {
		return nil, fmt.Errorf("%w: review", ErrNotFound)
	}
	if review.FromUserID != fromUserID {
		return nil, fmt.Errorf("%w: not authorized to update this review", ErrForbidden)
	}

	review.ReviewText = text
	review.Rating = rating
	if err := s.reviews.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Delete(reviewID, fromUserID int) error {
	review, err := s.reviews.FindByID(reviewID)
	if err != nil {
		return fmt.Errorf("%w: review", ErrNotFound)
	}
	if review.FromUserID != fromUserID {
		return fmt.Errorf("%w: not authorized to delete this review", ErrForbidden)
	}
	return s.reviews.Delete(reviewID)
}

func (s *ReviewService) resolveNames(reviews []models.Review) {
	cache := map[int]string{}
	name := func(id int) string {
		if n, ok := cache[id]; ok {
			return n
		}
		n := "Unknown User"
		if u, err := s.users.FindByID(id); err == nil {
			n = u.DisplayName()
		}
		cache[id] = n
		return n
	}
	for i := range reviews {
		reviews[i].FromName = name(reviews[i].FromUserID)
		reviews[i].ToName = name(reviews[i].ToUserID)
	}
}
