package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"buildlink-backend/models"
)

type ProjectRepository interface {
	Create(project *models.Project) (*models.Project, error)
	FindByID(id int) (*models.Project, error)
	List() ([]models.Project, error)
	Update(project *models.Project) error
	Delete(id int) error
	Search(title, buildingType, status string) ([]models.Project, error)
}

type InMemoryProjectRepo struct {
	mu   sync.RWMutex
	seq  int
	data map[int]*models.Project
}

func NewInMemoryProjectRepo() *InMemoryProjectRepo {
	return &InMemoryProjectRepo{data: make(map[int]*models.Project)}
}

func (r *InMemoryProjectRepo) Create(project *models.Project) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	p := *project
	p.ID = r.seq
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	if p.Status == "" {
		p.Status = models.ProjectPending
	}
	r.data[p.ID] = &p
	cp := p
	return &cp, nil
}

func (r *InMemoryProjectRepo) FindByID(id int) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *InMemoryProjectRepo) List() ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]models.Project, 0, len(r.data))
	for _, p := range r.data {
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (r *InMemoryProjectRepo) Update(project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[project.ID]; !ok {
		return ErrNotFound
	}
	p := *project
	p.UpdatedAt = time.Now()
	r.data[p.ID] = &p
	project.UpdatedAt = p.UpdatedAt
	return nil
}

func (r *InMemoryProjectRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *InMemoryProjectRepo) Search(title, buildingType, status string) ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var projects []models.Project
	for _, p := range r.data {
		if title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(title)) {
			continue
		}
		if buildingType != "" && p.BuildingType != buildingType {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}
