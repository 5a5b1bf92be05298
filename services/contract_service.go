package services

import (
	"fmt"
	"strings"

	"buildlink-backend/models"
	"buildlink-backend/repository"
)

type ContractService struct {
	contracts repository.ContractRepository
	projects  repository.ProjectRepository
	users     repository.UserRepository
}

func NewContractService(cr repository.ContractRepository, pr repository.ProjectRepository, ur repository.UserRepository) *ContractService {
	return &ContractService{contracts: cr, projects: pr, users: ur}
}

type ContractInput struct {
	ProjectID       int    `json:"project_id"`
	EngineerID      int    `json:"engineer_id"`
	TermsConditions string `json:"terms_conditions"`
}

// ContractUpdate carries a partial update; nil fields are left untouched.
// Each party may only write its own signature.
type ContractUpdate struct {
	TermsConditions *string `json:"terms_conditions"`
	Signature       *string `json:"signature"`
	Status          *string `json:"status"`
}

// Create snapshots the project's agreed fields into a new pending contract.
// The requesting client must own the project.
func (s *ContractService) Create(clientID int, in ContractInput) (*models.Contract, error) {
	if strings.TrimSpace(in.TermsConditions) == "" {
		return nil, fmt.Errorf("%w: terms and conditions are required", ErrValidation)
	}

	project, err := s.projects.FindByID(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: project", ErrNotFound)
	}
	if project.ClientID != clientID {
		return nil, fmt.Errorf("%w: you do not own this project", ErrForbidden)
	}

	engineer, err := s.users.FindByID(in.EngineerID)
	if err != nil {
		return nil, fmt.Errorf("%w: engineer not found", ErrValidation)
	}
	if engineer.Role != models.RoleEngineer {
		return nil, fmt.Errorf("%w: contracts can only be offered to engineers", ErrValidation)
	}

	contract, err := s.contracts.Create(&models.Contract{
		ProjectID:       project.ID,
		ClientID:        clientID,
		EngineerID:      in.EngineerID,
		Title:           project.Title,
		LandArea:        project.LandArea,
		BuildingType:    project.BuildingType,
		Budget:          project.Budget,
		Timeline:        project.Timeline,
		TermsConditions: strings.TrimSpace(in.TermsConditions),
		Status:          models.ContractPending,
	})
	if err != nil {
		return nil, err
	}
	s.resolveNames(contract)
	return contract, nil
}

// List returns the requester's contracts: clients see those they issued,
// engineers those offered to them.
func (s *ContractService) List(userID int) ([]models.Contract, error) {
	contracts, err := s.contracts.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		s.resolveNames(&contracts[i])
	}
	return contracts, nil
}

func (s *ContractService) Get(contractID, userID int) (*models.Contract, error) {
	c, err := s.contracts.FindByID(contractID)
	if err != nil {
		return nil, fmt.Errorf("%w: contract", ErrNotFound)
	}
	if !c.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: not a party to this contract", ErrForbidden)
	}
	s.resolveNames(c)
	return c, nil
}

func (s *ContractService) Update(contractID, userID int, upd ContractUpdate) (*models.Contract, error) {
	c, err := s.contracts.FindByID(contractID)
	if err != nil {
		return nil, fmt.Errorf("%w: contract", ErrNotFound)
	}
	if !c.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: not a party to this contract", ErrForbidden)
	}

	if upd.TermsConditions != nil {
		if strings.TrimSpace(*upd.TermsConditions) == "" {
			return nil, fmt.Errorf("%w: terms and conditions cannot be empty", ErrValidation)
		}
		if c.FullySigned() {
			return nil, fmt.Errorf("%w: cannot change terms on a fully signed contract", ErrValidation)
		}
		c.TermsConditions = strings.TrimSpace(*upd.TermsConditions)
	}
	if upd.Signature != nil {
		sig := strings.TrimSpace(*upd.Signature)
		if sig == "" {
			return nil, fmt.Errorf("%w: signature cannot be empty", ErrValidation)
		}
		if userID == c.ClientID {
			c.ClientSignature = sig
		} else {
			c.EngineerSignature = sig
		}
	}
	if upd.Status != nil {
		if !models.ValidContractStatus(*upd.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *upd.Status)
		}
		c.Status = *upd.Status
	}
	if c.Status == models.ContractPending && c.FullySigned() {
		c.Status = models.ContractSigned
	}

	if err := s.contracts.Update(c); err != nil {
		return nil, err
	}
	s.resolveNames(c)
	return c, nil
}

func (s *ContractService) Delete(contractID, userID int) error {
	c, err := s.contracts.FindByID(contractID)
	if err != nil {
		return fmt.Errorf("%w: contract", ErrNotFound)
	}
	if !c.IsParticipant(userID) {
		return fmt.Errorf("%w: not a party to this contract", ErrForbidden)
	}
	return s.contracts.Delete(contractID)
}

func (s *ContractService) resolveNames(c *models.Contract) {
	if u, err := s.users.FindByID(c.ClientID); err == nil {
		c.ClientName = u.DisplayName()
	}
	if u, err := s.users.FindByID(c.EngineerID); err == nil {
		c.EngineerName = u.DisplayName()
	}
}
