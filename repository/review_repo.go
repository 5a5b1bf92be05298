package repository

import (
	"sort"
	"sync"
	"time"

	"buildlink-backend/models"
)

type ReviewRepository interface {
	Create(review *models.Review) (*models.Review, error)
	FindByID(id int) (*models.Review, error)
	// List returns all reviews, newest first.
	List() ([]models.Review, error)
	// ListForUser returns reviews written about the given user, newest first.
	ListForUser(toUserID int) ([]models.Review, error)
	FindByPair(fromUserID, toUserID int) (*models.Review, error)
	Update(review *models.Review) error
	Delete(id int) error
}

type InMemoryReviewRepo struct {
	mu   sync.RWMutex
	seq  int
	data map[int]*models.Review
}

func NewInMemoryReviewRepo() *InMemoryReviewRepo {
	return &InMemoryReviewRepo{data: make(map[int]*models.Review)}
}

func (r *InMemoryReviewRepo) Create(review *models.Review) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	rv := *review
	rv.ID = r.seq
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now()
	}
	rv.UpdatedAt = rv.CreatedAt
	r.data[rv.ID] = &rv
	cp := rv
	return &cp, nil
}

func (r *InMemoryReviewRepo) FindByID(id int) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (r *InMemoryReviewRepo) List() ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := make([]models.Review, 0, len(r.data))
	for _, rv := range r.data {
		reviews = append(reviews, *rv)
	}
	sortNewestFirst(reviews)
	return reviews, nil
}

func (r *InMemoryReviewRepo) ListForUser(toUserID int) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reviews []models.Review
	for _, rv := range r.data {
		if rv.ToUserID == toUserID {
			reviews = append(reviews, *rv)
		}
	}
	sortNewestFirst(reviews)
	return reviews, nil
}

func (r *InMemoryReviewRepo) FindByPair(fromUserID, toUserID int) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rv := range r.data {
		if rv.FromUserID == fromUserID && rv.ToUserID == toUserID {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryReviewRepo) Update(review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[review.ID]; !ok {
		return ErrNotFound
	}
	rv := *review
	rv.UpdatedAt = time.Now()
	r.data[rv.ID] = &rv
	review.UpdatedAt = rv.UpdatedAt
	return nil
}

func (r *InMemoryReviewRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func sortNewestFirst(reviews []models.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID > reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}
