package services

import (
	"errors"
	"testing"
	"time"

	"buildlink-backend/config"
	"buildlink-backend/models"
	"buildlink-backend/repository"
	"buildlink-backend/ws"
)

type pushedEvent struct {
	userID  int // 0 for broadcasts
	event   string
	payload map[string]any
}

// fakePusher records every push so tests can assert exactly what would have
// gone over the wire, and to whom.
type fakePusher struct {
	online     map[int]bool
	sent       []pushedEvent
	broadcasts []pushedEvent
}

func newFakePusher(onlineUsers ...int) *fakePusher {
	online := make(map[int]bool)
	for _, id := range onlineUsers {
		online[id] = true
	}
	return &fakePusher{online: online}
}

func (f *fakePusher) SendToUser(userID int, event string, payload any) bool {
	if !f.online[userID] {
		return false
	}
	f.sent = append(f.sent, pushedEvent{userID: userID, event: event, payload: payload.(map[string]any)})
	return true
}

func (f *fakePusher) Broadcast(event string, payload any) {
	f.broadcasts = append(f.broadcasts, pushedEvent{event: event, payload: payload.(map[string]any)})
}

func (f *fakePusher) sentTo(userID int, event string) []pushedEvent {
	var out []pushedEvent
	for _, e := range f.sent {
		if e.userID == userID && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func newTestMessageService(pusher EventPusher) (*MessageService, repository.UserRepository, repository.MessageRepository) {
	users := repository.NewInMemoryUserRepo()
	msgs := repository.NewInMemoryMessageRepo()
	cfg := config.Config{MaxMessageLength: 100}
	return NewMessageService(msgs, users, pusher, &cfg), users, msgs
}

func addUser(t *testing.T, users repository.UserRepository, first, last, role string) *models.User {
	t.Helper()
	u, err := users.Create(&models.User{
		FirstName: first,
		LastName:  last,
		Email:     first + "." + last + "@example.com",
		Phone:     "555-0100",
		Password:  "x",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func TestSendPersistsBeforeAnyDelivery(t *testing.T) {
	pusher := newFakePusher()
	svc, users, _ := newTestMessageService(pusher)
	alice := addUser(t, users, "Alice", "Ames", models.RoleClient)
	bob := addUser(t, users, "Bob", "Burns", models.RoleEngineer)

	msg, err := svc.Send(alice.ID, bob.ID, "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("expected a persisted message id")
	}
	if msg.SenderName != "Alice Ames" || msg.ReceiverName != "Bob Burns" {
		t.Fatalf("expected display names resolved, got %q -> %q", msg.SenderName, msg.ReceiverName)
	}

	// retrievable in both query directions
	for _, pair := range [][2]int{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		hist, err := svc.History(pair[0], pair[1], 0)
		if err != nil {
			t.Fatalf("History(%d,%d) failed: %v", pair[0], pair[1], err)
		}
		if len(hist) != 1 || hist[0].Content != "hello" {
			t.Fatalf("History(%d,%d) = %+v, want one 'hello'", pair[0], pair[1], hist)
		}
	}
}

func TestSendValidation(t *testing.T) {
	pusher := newFakePusher()
	svc, users, msgs := newTestMessageService(pusher)
	alice := addUser(t, users, "Alice", "Ames", models.RoleClient)
	bob := addUser(t, users, "Bob", "Burns", models.RoleEngineer)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}

	cases := []struct {
		name     string
		sender   int
		receiver int
		content  string
	}{
		{"empty content", alice.ID, bob.ID, ""},
		{"whitespace content", alice.ID, bob.ID, "   \t\n"},
		{"too long", alice.ID, bob.ID, string(long)},
		{"self message", alice.ID, alice.ID, "hi me"},
		{"missing receiver", alice.ID, 999, "hi"},
		{"missing sender", 999, bob.ID, "hi"},
	}
	for _, tc := range cases {
		if _, err := svc.Send(tc.sender, tc.receiver, tc.content); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	// rejects must have no side effects: nothing persisted, nothing pushed
	if _, err := msgs.LatestBetween(alice.ID, bob.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("no message should have been persisted by rejected sends")
	}
	if len(pusher.sent) != 0 || len(pusher.broadcasts) != 0 {
		t.Fatal("no events should have been pushed by rejected sends")
	}
}

func TestSendToOfflineReceiverStillSucceeds(t *testing.T) {
	pusher := newFakePusher() // nobody online
	svc, users, _ := newTestMessageService(pusher)
	alice := addUser(t, users, "Alice", "Ames", models.RoleClient)
	carol := addUser(t, users, "Carol", "Cole", models.RoleEngineer)

	msg, err := svc.Send(alice.ID, carol.ID, "are you there?")
	if err != nil {
		t.Fatalf("Send to offline receiver failed: %v", err)
	}
	if msg == nil || msg.Content != "are you there?" {
		t.Fatalf("expected persisted message back, got %+v", msg)
	}

	hist, err := svc.History(alice.ID, carol.ID, 0)
	if err != nil || len(hist) != 1 {
		t.Fatalf("expected one stored message, got %v (err %v)", hist, err)
	}
	if len(pusher.sent) != 0 {
		t.Fatalf("no new-message event should reach any connection, got %+v", pusher.sent)
	}
}

func TestSendToOnlineReceiverDeliversOnce(t *testing.T) {
	pusher := newFakePusher()
	svc, users, _ := newTestMessageService(pusher)
	a := addUser(t, users, "Alice", "Ames", models.RoleClient)
	b := addUser(t, users, "Bob", "Burns", models.RoleEngineer)
	c := addUser(t, users, "Carol", "Cole", models.RoleEngineer)
	alice, bob := a.ID, b.ID
	pusher.online[alice] = true
	pusher.online[bob] = true
	pusher.online[c.ID] = true

	if _, err := svc.Send(alice, bob, "hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	got := pusher.sentTo(bob, ws.EventNewMessage)
	if len(got) != 1 {
		t.Fatalf("expected exactly one new-message event for bob, got %d", len(got))
	}
	msg := got[0].payload["message"].(*models.Message)
	if msg.Content != "hello" {
		t.Fatalf("expected delivered content 'hello', got %q", msg.Content)
	}
	if got[0].payload["sender_id"] != alice || got[0].payload["receiver_id"] != bob {
		t.Fatalf("wrong routing fields in payload: %+v", got[0].payload)
	}

	// unrelated connections never see the message
	if n := len(pusher.sentTo(alice, ws.EventNewMessage)); n != 0 {
		t.Fatalf("sender should not receive a new-message event, got %d", n)
	}
	if n := len(pusher.sentTo(c.ID, ws.EventNewMessage)); n != 0 {
		t.Fatalf("bystander should not receive a new-message event, got %d", n)
	}
}

func TestSendClearsStaleTypingIndicator(t *testing.T) {
	pusher := newFakePusher()
	svc, users, _ := newTestMessageService(pusher)
	alice := addUser(t, users, "Alice", "Ames", models.RoleClient)
	bob := addUser(t, users, "Bob", "Burns", models.RoleEngineer)

	if _, err := svc.Send(alice.ID, bob.ID, "done typing"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	// the stopped-typing broadcast goes out even with the receiver offline
	if len(pusher.broadcasts) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(pusher.broadcasts))
	}
	bc := pusher.broadcasts[0]
	if bc.event != ws.EventUserStoppedTyping || bc.payload["sender_id"] != alice.ID {
		t.Fatalf("unexpected broadcast %+v", bc)
	}
}

func TestTypingForwardedOnlyWhenReceiverOnline(t *testing.T) {
	pusher := newFakePusher()
	svc, users, _ := newTestMessageService(pusher)
	alice := addUser(t, users, "Alice", "Ames", models.RoleClient)
	bob := addUser(t, users, "Bob", "Burns", models.RoleEngineer)
	pusher.online[bob.ID] = true

	svc.Typing(alice.ID, bob.ID, true)
	svc.Typing(alice.ID, bob.ID, false)

	typing := pusher.sentTo(bob.ID, ws.EventUserTyping)
	stopped := pusher.sentTo(bob.ID, ws.EventUserStoppedTyping)
	if len(typing) != 1 || typing[0].payload["sender_id"] != alice.ID {
		t.Fatalf("expected one user-typing event carrying alice's id, got %+v", typing)
	}
	if len(stopped) != 1 || stopped[0].payload["sender_id"] != alice.ID {
		t.Fatalf("expected one user-stopped-typing event carrying alice's id, got %+v", stopped)
	}

	// offline receiver: the signal is dropped without error or record
	pusher.online[bob.ID] = false
	before := len(pusher.sent)
	svc.Typing(alice.ID, bob.ID, true)
	if len(pusher.sent) != before {
		t.Fatal("typing signal to an offline receiver should be dropped")
	}
}

func TestHistoryChronologicalWithNames(t *testing.T) {
	pusher := newFakePusher()
	svc, users, msgs := newTestMessageService(pusher)
	alice := addUser(t, users, "Alice", "Ames", models.RoleClient)
	bob := addUser(t, users, "Bob", "Burns", models.RoleEngineer)

	base := time.Now().Add(-time.Hour)
	seed := []struct {
		from, to int
		content  string
		at       time.Time
	}{
		{alice.ID, bob.ID, "first", base},
		{bob.ID, alice.ID, "second", base.Add(time.Minute)},
		{alice.ID, bob.ID, "third", base.Add(2 * time.Minute)},
	}
	for _, m := range seed {
		if _, err := msgs.Save(&models.Message{SenderID: m.from, ReceiverID: m.to, Content: m.content, CreatedAt: m.at}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	hist, err := svc.History(bob.ID, alice.ID, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(hist))
	}
	for i, want := range []string{"first", "second", "third"} {
		if hist[i].Content != want {
			t.Fatalf("position %d: got %q, want %q", i, hist[i].Content, want)
		}
	}
	if hist[1].SenderName != "Bob Burns" || hist[1].ReceiverName != "Alice Ames" {
		t.Fatalf("names not resolved: %+v", hist[1])
	}
}

func TestConversationsOrdering(t *testing.T) {
	pusher := newFakePusher()
	svc, users, msgs := newTestMessageService(pusher)
	me := addUser(t, users, "Mona", "Main", models.RoleClient)
	old := addUser(t, users, "Olive", "Old", models.RoleEngineer)
	recent := addUser(t, users, "Rita", "Recent", models.RoleEngineer)
	never := addUser(t, users, "Nina", "Never", models.RoleEngineer)

	base := time.Now().Add(-time.Hour)
	msgs.Save(&models.Message{SenderID: me.ID, ReceiverID: old.ID, Content: "a while ago", CreatedAt: base})
	msgs.Save(&models.Message{SenderID: recent.ID, ReceiverID: me.ID, Content: "just now", CreatedAt: base.Add(30 * time.Minute)})

	convs, err := svc.Conversations(me.ID)
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(convs) != 3 {
		t.Fatalf("expected 3 conversations (every other user once), got %d", len(convs))
	}

	if convs[0].UserID != recent.ID || convs[0].LastMessage != "just now" || !convs[0].HasMessages {
		t.Fatalf("expected most recent partner first, got %+v", convs[0])
	}
	if convs[1].UserID != old.ID || convs[1].LastMessage != "a while ago" {
		t.Fatalf("expected older partner second, got %+v", convs[1])
	}
	if convs[2].UserID != never.ID || convs[2].HasMessages || convs[2].Timestamp != nil {
		t.Fatalf("expected never-contacted partner last with no history, got %+v", convs[2])
	}
	if convs[2].Name != "Nina Never" {
		t.Fatalf("expected display name on empty conversation, got %q", convs[2].Name)
	}
}

func TestDeleteAuthorization(t *testing.T) {
	pusher := newFakePusher()
	svc, users, msgs := newTestMessageService(pusher)
	alice := addUser(t, users, "Alice", "Ames", models.RoleClient)
	bob := addUser(t, users, "Bob", "Burns", models.RoleEngineer)

	msg, err := svc.Send(alice.ID, bob.ID, "to be deleted")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	// receiver may not delete
	if err := svc.Delete(msg.ID, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non-sender, got %v", err)
	}
	if _, err := msgs.FindByID(msg.ID); err != nil {
		t.Fatal("message must remain intact after a rejected delete")
	}

	// unknown id is a distinct not-found
	if err := svc.Delete(99999, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found for unknown id, got %v", err)
	}

	// sender delete removes it from history
	if err := svc.Delete(msg.ID, alice.ID); err != nil {
		t.Fatalf("sender delete failed: %v", err)
	}
	hist, err := svc.History(alice.ID, bob.ID, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("expected empty history after delete, got %+v", hist)
	}
}
