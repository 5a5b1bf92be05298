package repository

import (
	"errors"
	"sort"
	"sync"
	"time"

	"buildlink-backend/models"
)

type MessageRepository interface {
	Save(msg *models.Message) (*models.Message, error)
	FindByID(id int) (*models.Message, error)
	// ListBetween returns every message exchanged between the two users, in
	// either direction, ordered by ascending timestamp. A limit of 0 means
	// no limit.
	ListBetween(userA, userB, limit int) ([]models.Message, error)
	LatestBetween(userA, userB int) (*models.Message, error)
	Delete(id int) error
}

type InMemoryMessageRepo struct {
	mu   sync.RWMutex
	seq  int
	data map[int]*models.Message
}

func NewInMemoryMessageRepo() *InMemoryMessageRepo {
	return &InMemoryMessageRepo{
		data: make(map[int]*models.Message),
	}
}

func (r *InMemoryMessageRepo) Save(msg *models.Message) (*models.Message, error) {
	if msg == nil {
		return nil, errors.New("nil message")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m := *msg
	m.ID = r.seq
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.data[m.ID] = &m
	cp := m
	return &cp, nil
}

func (r *InMemoryMessageRepo) FindByID(id int) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *InMemoryMessageRepo) ListBetween(userA, userB, limit int) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := []models.Message{}
	for _, m := range r.data {
		if betweenPair(m, userA, userB) {
			msgs = append(msgs, *m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (r *InMemoryMessageRepo) LatestBetween(userA, userB int) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.Message
	for _, m := range r.data {
		if !betweenPair(m, userA, userB) {
			continue
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) ||
			(m.CreatedAt.Equal(latest.CreatedAt) && m.ID > latest.ID) {
			latest = m
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *InMemoryMessageRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func betweenPair(m *models.Message, userA, userB int) bool {
	return (m.SenderID == userA && m.ReceiverID == userB) ||
		(m.SenderID == userB && m.ReceiverID == userA)
}
