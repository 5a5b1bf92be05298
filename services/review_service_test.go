package services

import (
	"errors"
	"testing"

	"buildlink-backend/models"
)

func TestReviewCreate(t *testing.T) {
	f := newMarketplaceFixture(t)

	r, err := f.reviews.Create(f.client.ID, f.engineer.ID, "Great structural work.", 5)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.FromName != f.client.DisplayName() || r.ToName != f.engineer.DisplayName() {
		t.Fatalf("names not resolved: %+v", r)
	}
	if r.Rating != 5 {
		t.Fatalf("rating not stored: %+v", r)
	}
}

func TestReviewCreateValidation(t *testing.T) {
	f := newMarketplaceFixture(t)

	if _, err := f.reviews.Create(f.client.ID, f.engineer.ID, "  ", 4); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rejection of empty text, got %v", err)
	}
	if _, err := f.reviews.Create(f.client.ID, f.engineer.ID, "ok", 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rejection of rating 0, got %v", err)
	}
	if _, err := f.reviews.Create(f.client.ID, f.engineer.ID, "ok", 6); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rejection of rating 6, got %v", err)
	}
	// reviews target engineers only
	if _, err := f.reviews.Create(f.engineer.ID, f.client.ID, "ok", 3); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rejection reviewing a client, got %v", err)
	}
}

func TestReviewOnePerEngineer(t *testing.T) {
	f := newMarketplaceFixture(t)

	if _, err := f.reviews.Create(f.client.ID, f.engineer.ID, "first", 4); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if _, err := f.reviews.Create(f.client.ID, f.engineer.ID, "second", 2); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected duplicate review rejection, got %v", err)
	}
	// a different author may still review the same engineer
	other := addUser(t, f.users, "Dana", "Doe", models.RoleClient)
	if _, err := f.reviews.Create(other.ID, f.engineer.ID, "also good", 5); err != nil {
		t.Fatalf("second author's review failed: %v", err)
	}
}

func TestReviewListForEngineer(t *testing.T) {
	f := newMarketplaceFixture(t)
	f.reviews.Create(f.client.ID, f.engineer.ID, "solid", 4)

	reviews, err := f.reviews.ListForEngineer(f.engineer.ID)
	if err != nil || len(reviews) != 1 {
		t.Fatalf("listing failed: %v %+v", err, reviews)
	}

	if _, err := f.reviews.ListForEngineer(f.client.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected rejection listing reviews for a client, got %v", err)
	}
	if _, err := f.reviews.ListForEngineer(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}

func TestReviewUpdateAndDeleteAuthorOnly(t *testing.T) {
	f := newMarketplaceFixture(t)
	r, _ := f.reviews.Create(f.client.ID, f.engineer.ID, "initial", 3)

	if _, err := f.reviews.Update(r.ID, f.engineer.ID, "tampered", 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden update by non-author, got %v", err)
	}
	updated, err := f.reviews.Update(r.ID, f.client.ID, "revised", 5)
	if err != nil || updated.ReviewText != "revised" || updated.Rating != 5 {
		t.Fatalf("author update failed: %v (%+v)", err, updated)
	}

	if err := f.reviews.Delete(r.ID, f.engineer.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden delete by non-author, got %v", err)
	}
	if err := f.reviews.Delete(r.ID, f.client.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
	if err := f.reviews.Delete(r.ID, f.client.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
