package repository

import (
	"sort"
	"sync"
	"time"

	"buildlink-backend/models"
)

type ContractRepository interface {
	Create(contract *models.Contract) (*models.Contract, error)
	FindByID(id int) (*models.Contract, error)
	// ListForUser returns contracts where the user is either party.
	ListForUser(userID int) ([]models.Contract, error)
	Update(contract *models.Contract) error
	Delete(id int) error
}

type InMemoryContractRepo struct {
	mu   sync.RWMutex
	seq  int
	data map[int]*models.Contract
}

func NewInMemoryContractRepo() *InMemoryContractRepo {
	return &InMemoryContractRepo{data: make(map[int]*models.Contract)}
}

func (r *InMemoryContractRepo) Create(contract *models.Contract) (*models.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	c := *contract
	c.ID = r.seq
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
	if c.Status == "" {
		c.Status = models.ContractPending
	}
	r.data[c.ID] = &c
	cp := c
	return &cp, nil
}

func (r *InMemoryContractRepo) FindByID(id int) (*models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryContractRepo) ListForUser(userID int) ([]models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var contracts []models.Contract
	for _, c := range r.data {
		if c.IsParticipant(userID) {
			contracts = append(contracts, *c)
		}
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].ID < contracts[j].ID })
	return contracts, nil
}

func (r *InMemoryContractRepo) Update(contract *models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[contract.ID]; !ok {
		return ErrNotFound
	}
	c := *contract
	c.UpdatedAt = time.Now()
	r.data[c.ID] = &c
	contract.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *InMemoryContractRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}
