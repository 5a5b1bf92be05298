package repository

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"buildlink-backend/models"
)

type UserRepository interface {
	Create(user *models.User) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByID(id int) (*models.User, error)
	List() ([]models.User, error)
	UpdatePassword(id int, hashedPwd string) error
	SetActive(id int, active bool) error
}

type InMemoryUserRepo struct {
	mu      sync.RWMutex
	seq     int
	byID    map[int]*models.User
	byEmail map[string]*models.User
}

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		byID:    make(map[int]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (r *InMemoryUserRepo) Create(user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return nil, errors.New("email already registered")
	}

	r.seq++
	u := *user
	u.ID = r.seq
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	r.byID[u.ID] = &u
	r.byEmail[key] = &u
	cp := u
	return &cp, nil
}

func (r *InMemoryUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *InMemoryUserRepo) FindByID(id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *InMemoryUserRepo) List() ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *InMemoryUserRepo) UpdatePassword(id int, hashedPwd string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = hashedPwd
	return nil
}

func (r *InMemoryUserRepo) SetActive(id int, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = active
	return nil
}
