package services

import (
	"fmt"
	"strings"

	"buildlink-backend/models"
	"buildlink-backend/repository"
)

type ProjectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
}

func NewProjectService(pr repository.ProjectRepository, ur repository.UserRepository) *ProjectService {
	return &ProjectService{projects: pr, users: ur}
}

type ProjectInput struct {
	Title        string  `json:"title"`
	LandArea     float64 `json:"land_area"`
	BuildingType string  `json:"building_type"`
	Budget       float64 `json:"budget"`
	Timeline     string  `json:"timeline"`
}

// ProjectUpdate carries a partial update; nil fields are left untouched.
type ProjectUpdate struct {
	Title        *string  `json:"title"`
	LandArea     *float64 `json:"land_area"`
	BuildingType *string  `json:"building_type"`
	Budget       *float64 `json:"budget"`
	Timeline     *string  `json:"timeline"`
	Status       *string  `json:"status"`
	AssignedTo   *int     `json:"assigned_to"`
}

func (s *ProjectService) Create(clientID int, in ProjectInput) (*models.Project, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.LandArea <= 0 {
		return nil, fmt.Errorf("%w: land area must be positive", ErrValidation)
	}
	if strings.TrimSpace(in.BuildingType) == "" {
		return nil, fmt.Errorf("%w: building type is required", ErrValidation)
	}
	if in.Budget < 0 {
		return nil, fmt.Errorf("%w: budget cannot be negative", ErrValidation)
	}
	if strings.TrimSpace(in.Timeline) == "" {
		return nil, fmt.Errorf("%w: timeline is required", ErrValidation)
	}

	return s.projects.Create(&models.Project{
		ClientID:     clientID,
		Title:        strings.TrimSpace(in.Title),
		LandArea:     in.LandArea,
		BuildingType: strings.TrimSpace(in.BuildingType),
		Budget:       in.Budget,
		Timeline:     strings.TrimSpace(in.Timeline),
		Status:       models.ProjectPending,
	})
}

func (s *ProjectService) List() ([]models.Project, error) {
	return s.projects.List()
}

func (s *ProjectService) Get(id int) (*models.Project, error) {
	p, err := s.projects.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: project", ErrNotFound)
	}
	return p, nil
}

func (s *ProjectService) Update(projectID, userID int, upd ProjectUpdate) (*models.Project, error) {
	p, err := s.projects.FindByID(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: project", ErrNotFound)
	}
	if p.ClientID != userID {
		return nil, fmt.Errorf("%w: only the project owner can update it", ErrForbidden)
	}

	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		p.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.LandArea != nil {
		if *upd.LandArea <= 0 {
			return nil, fmt.Errorf("%w: land area must be positive", ErrValidation)
		}
		p.LandArea = *upd.LandArea
	}
	if upd.BuildingType != nil {
		p.BuildingType = strings.TrimSpace(*upd.BuildingType)
	}
	if upd.Budget != nil {
		if *upd.Budget < 0 {
			return nil, fmt.Errorf("%w: budget cannot be negative", ErrValidation)
		}
		p.Budget = *upd.Budget
	}
	if upd.Timeline != nil {
		p.Timeline = strings.TrimSpace(*upd.Timeline)
	}
	if upd.Status != nil {
		if !models.ValidProjectStatus(*upd.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *upd.Status)
		}
		p.Status = *upd.Status
	}
	if upd.AssignedTo != nil {
		engineer, err := s.users.FindByID(*upd.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("%w: assigned engineer not found", ErrValidation)
		}
		if engineer.Role != models.RoleEngineer {
			return nil, fmt.Errorf("%w: projects can only be assigned to engineers", ErrValidation)
		}
		p.AssignedTo = upd.AssignedTo
	}

	if err := s.projects.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Delete(projectID, userID int) error {
	p, err := s.projects.FindByID(projectID)
	if err != nil {
		return fmt.Errorf("%w: project", ErrNotFound)
	}
	if p.ClientID != userID {
		return fmt.Errorf("%w: only the project owner can delete it", ErrForbidden)
	}
	return s.projects.Delete(projectID)
}

func (s *ProjectService) Search(title, buildingType, status string) ([]models.Project, error) {
	if status != "" && !models.ValidProjectStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	return s.projects.Search(title, buildingType, status)
}
