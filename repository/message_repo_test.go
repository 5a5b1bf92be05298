package repository

import (
	"errors"
	"testing"
	"time"

	"buildlink-backend/models"
)

func seedMessage(t *testing.T, repo *InMemoryMessageRepo, sender, receiver int, content string, at time.Time) *models.Message {
	t.Helper()
	m, err := repo.Save(&models.Message{
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		CreatedAt:  at,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return m
}

func TestMessageSaveAssignsIDs(t *testing.T) {
	repo := NewInMemoryMessageRepo()

	first := seedMessage(t, repo, 1, 2, "hi", time.Time{})
	second := seedMessage(t, repo, 2, 1, "hey", time.Time{})

	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("expected a timestamp to be stamped on save")
	}
}

func TestListBetweenOrderAndDirections(t *testing.T) {
	repo := NewInMemoryMessageRepo()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	seedMessage(t, repo, 1, 2, "second", base.Add(time.Minute))
	seedMessage(t, repo, 2, 1, "first", base)
	seedMessage(t, repo, 1, 2, "third", base.Add(2*time.Minute))
	seedMessage(t, repo, 1, 3, "other thread", base)

	msgs, err := repo.ListBetween(1, 2, 0)
	if err != nil {
		t.Fatalf("ListBetween failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages between 1 and 2, got %d", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Content != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, msgs[i].Content)
		}
	}
}

func TestListBetweenLimitKeepsLatest(t *testing.T) {
	repo := NewInMemoryMessageRepo()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, content := range []string{"a", "b", "c", "d"} {
		seedMessage(t, repo, 1, 2, content, base.Add(time.Duration(i)*time.Minute))
	}

	msgs, err := repo.ListBetween(1, 2, 2)
	if err != nil {
		t.Fatalf("ListBetween failed: %v", err)
	}
	// the newest two, still in chronological order
	if len(msgs) != 2 || msgs[0].Content != "c" || msgs[1].Content != "d" {
		t.Fatalf("expected [c d], got %+v", msgs)
	}
}

func TestLatestBetween(t *testing.T) {
	repo := NewInMemoryMessageRepo()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, err := repo.LatestBetween(1, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty pair, got %v", err)
	}

	seedMessage(t, repo, 1, 2, "old", base)
	seedMessage(t, repo, 2, 1, "new", base.Add(time.Hour))

	latest, err := repo.LatestBetween(1, 2)
	if err != nil || latest.Content != "new" {
		t.Fatalf("expected newest message, got %v (%+v)", err, latest)
	}
}

func TestMessageDelete(t *testing.T) {
	repo := NewInMemoryMessageRepo()
	m := seedMessage(t, repo, 1, 2, "bye", time.Time{})

	if err := repo.Delete(m.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
