package services

import (
	"errors"
	"testing"

	"buildlink-backend/models"
	"buildlink-backend/repository"
)

type marketplaceFixture struct {
	users     repository.UserRepository
	projects  *ProjectService
	contracts *ContractService
	reviews   *ReviewService
	client    *models.User
	engineer  *models.User
}

func newMarketplaceFixture(t *testing.T) *marketplaceFixture {
	t.Helper()
	users := repository.NewInMemoryUserRepo()
	projectRepo := repository.NewInMemoryProjectRepo()

	f := &marketplaceFixture{
		users:     users,
		projects:  NewProjectService(projectRepo, users),
		contracts: NewContractService(repository.NewInMemoryContractRepo(), projectRepo, users),
		reviews:   NewReviewService(repository.NewInMemoryReviewRepo(), users),
	}
	f.client = addUser(t, users, "Cleo", "Client", models.RoleClient)
	f.engineer = addUser(t, users, "Eddy", "Engineer", models.RoleEngineer)
	return f
}

func validProjectInput() ProjectInput {
	return ProjectInput{
		Title:        "Hillside residence",
		LandArea:     420.5,
		BuildingType: "residential",
		Budget:       250000,
		Timeline:     "9 months",
	}
}

func TestProjectCreateAndDefaults(t *testing.T) {
	f := newMarketplaceFixture(t)

	p, err := f.projects.Create(f.client.ID, validProjectInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Status != models.ProjectPending {
		t.Fatalf("expected new projects pending, got %q", p.Status)
	}
	if p.ClientID != f.client.ID {
		t.Fatalf("expected owner %d, got %d", f.client.ID, p.ClientID)
	}
}

func TestProjectCreateValidation(t *testing.T) {
	f := newMarketplaceFixture(t)

	cases := []struct {
		name   string
		mutate func(*ProjectInput)
	}{
		{"empty title", func(in *ProjectInput) { in.Title = "  " }},
		{"zero land area", func(in *ProjectInput) { in.LandArea = 0 }},
		{"missing building type", func(in *ProjectInput) { in.BuildingType = "" }},
		{"negative budget", func(in *ProjectInput) { in.Budget = -1 }},
		{"missing timeline", func(in *ProjectInput) { in.Timeline = "" }},
	}
	for _, tc := range cases {
		in := validProjectInput()
		tc.mutate(&in)
		if _, err := f.projects.Create(f.client.ID, in); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestProjectUpdateOwnerOnly(t *testing.T) {
	f := newMarketplaceFixture(t)
	p, _ := f.projects.Create(f.client.ID, validProjectInput())

	title := "Updated title"
	if _, err := f.projects.Update(p.ID, f.engineer.ID, ProjectUpdate{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	updated, err := f.projects.Update(p.ID, f.client.ID, ProjectUpdate{Title: &title})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "Updated title" {
		t.Fatalf("title not applied: %+v", updated)
	}
}

func TestProjectAssignmentRequiresEngineer(t *testing.T) {
	f := newMarketplaceFixture(t)
	p, _ := f.projects.Create(f.client.ID, validProjectInput())

	if _, err := f.projects.Update(p.ID, f.client.ID, ProjectUpdate{AssignedTo: &f.client.ID}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rejection assigning a client, got %v", err)
	}

	updated, err := f.projects.Update(p.ID, f.client.ID, ProjectUpdate{AssignedTo: &f.engineer.ID})
	if err != nil {
		t.Fatalf("assignment failed: %v", err)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != f.engineer.ID {
		t.Fatalf("assignment not applied: %+v", updated)
	}
}

func TestProjectStatusValidation(t *testing.T) {
	f := newMarketplaceFixture(t)
	p, _ := f.projects.Create(f.client.ID, validProjectInput())

	bad := "archived"
	if _, err := f.projects.Update(p.ID, f.client.ID, ProjectUpdate{Status: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid status rejection, got %v", err)
	}

	active := models.ProjectActive
	updated, err := f.projects.Update(p.ID, f.client.ID, ProjectUpdate{Status: &active})
	if err != nil || updated.Status != models.ProjectActive {
		t.Fatalf("valid status change failed: %v (%+v)", err, updated)
	}
}

func TestProjectDeleteOwnerOnly(t *testing.T) {
	f := newMarketplaceFixture(t)
	p, _ := f.projects.Create(f.client.ID, validProjectInput())

	if err := f.projects.Delete(p.ID, f.engineer.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if err := f.projects.Delete(p.ID, f.client.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := f.projects.Get(p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected project gone, got %v", err)
	}
}

func TestProjectSearch(t *testing.T) {
	f := newMarketplaceFixture(t)
	f.projects.Create(f.client.ID, validProjectInput())
	warehouse := validProjectInput()
	warehouse.Title = "Dockside warehouse"
	warehouse.BuildingType = "industrial"
	f.projects.Create(f.client.ID, warehouse)

	found, err := f.projects.Search("dock", "", "")
	if err != nil || len(found) != 1 || found[0].Title != "Dockside warehouse" {
		t.Fatalf("title search failed: %v %+v", err, found)
	}

	found, err = f.projects.Search("", "industrial", models.ProjectPending)
	if err != nil || len(found) != 1 {
		t.Fatalf("filter search failed: %v %+v", err, found)
	}

	if _, err := f.projects.Search("", "", "archived"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid status rejection, got %v", err)
	}
}
