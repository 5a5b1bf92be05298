package services

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"buildlink-backend/config"
	"buildlink-backend/models"
	"buildlink-backend/repository"
	"buildlink-backend/ws"
)

// EventPusher is the slice of the gateway the coordinator needs: targeted
// delivery and fan-out. Keeping it an interface here lets tests swap in a
// recording fake.
type EventPusher interface {
	SendToUser(userID int, event string, payload any) bool
	Broadcast(event string, payload any)
}

// MessageService coordinates the persisted message store with real-time
// delivery. Persistence is authoritative; pushing to a live connection is a
// best-effort optimization on top and never fails a request.
type MessageService struct {
	msgs   repository.MessageRepository
	users  repository.UserRepository
	pusher EventPusher
	config *config.Config
	logger *log.Logger
}

func NewMessageService(mr repository.MessageRepository, ur repository.UserRepository, pusher EventPusher, cfg *config.Config) *MessageService {
	return &MessageService{
		msgs:   mr,
		users:  ur,
		pusher: pusher,
		config: cfg,
		logger: log.New(os.Stdout, "[MESSAGES] ", log.LstdFlags),
	}
}

// Send persists a message and then, if the receiver has a live connection,
// pushes it there. The order is a hard requirement: never notify about an
// unpersisted message.
func (s *MessageService) Send(senderID, receiverID int, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is empty", ErrValidation)
	}
	if len(content) > s.config.MaxMessageLength {
		return nil, fmt.Errorf("%w: message too long (max %d characters)", ErrValidation, s.config.MaxMessageLength)
	}
	if receiverID == senderID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}

	sender, err := s.users.FindByID(senderID)
	if err != nil {
		return nil, fmt.Errorf("%w: sender not found", ErrValidation)
	}
	receiver, err := s.users.FindByID(receiverID)
	if err != nil {
		return nil, fmt.Errorf("%w: receiver not found", ErrValidation)
	}

	saved, err := s.msgs.Save(&models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	})
	if err != nil {
		return nil, err
	}
	saved.SenderName = sender.DisplayName()
	saved.ReceiverName = receiver.DisplayName()

	if delivered := s.pusher.SendToUser(receiverID, ws.EventNewMessage, map[string]any{
		"message":     saved,
		"sender_id":   senderID,
		"receiver_id": receiverID,
	}); !delivered {
		s.logger.Printf("receiver %d offline, message %d stored for later pickup", receiverID, saved.ID)
	}

	// clear any stale typing indicator the sender left on screen; goes to
	// everyone because we do not track who was shown the indicator
	s.pusher.Broadcast(ws.EventUserStoppedTyping, map[string]any{"sender_id": senderID})

	return saved, nil
}

// Typing forwards a typing signal to the receiver's connection. Offline
// receivers simply miss it; typing indicators carry no durability promise.
func (s *MessageService) Typing(senderID, receiverID int, isTyping bool) {
	event := ws.EventUserTyping
	if !isTyping {
		event = ws.EventUserStoppedTyping
	}
	s.pusher.SendToUser(receiverID, event, map[string]any{"sender_id": senderID})
}

// History returns every message between the two users, in either direction,
// oldest first, with display names resolved. A limit of 0 means all.
func (s *MessageService) History(userA, userB, limit int) ([]models.Message, error) {
	msgs, err := s.msgs.ListBetween(userA, userB, limit)
	if err != nil {
		return nil, err
	}

	names := map[int]string{}
	for i := range msgs {
		msgs[i].SenderName = s.displayName(names, msgs[i].SenderID)
		msgs[i].ReceiverName = s.displayName(names, msgs[i].ReceiverID)
	}
	return msgs, nil
}

// Conversations lists every other user exactly once, pairs with history
// first (most recent exchange first), never-contacted users after them.
func (s *MessageService) Conversations(userID int) ([]models.Conversation, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}

	conversations := []models.Conversation{}
	for _, u := range users {
		if u.ID == userID {
			continue
		}
		conv := models.Conversation{
			UserID: u.ID,
			Name:   u.DisplayName(),
			Role:   u.Role,
		}
		last, err := s.msgs.LatestBetween(userID, u.ID)
		if err == nil {
			ts := last.CreatedAt
			conv.LastMessage = last.Content
			conv.Timestamp = &ts
			conv.HasMessages = true
		} else if err != repository.ErrNotFound {
			return nil, err
		}
		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		if a.HasMessages != b.HasMessages {
			return a.HasMessages
		}
		if !a.HasMessages {
			return false
		}
		return a.Timestamp.After(*b.Timestamp)
	})
	return conversations, nil
}

// Delete removes a message permanently. Only the original sender may delete;
// an already-delivered real-time copy is not retracted.
func (s *MessageService) Delete(messageID, requesterID int) error {
	msg, err := s.msgs.FindByID(messageID)
	if err != nil {
		return fmt.Errorf("%w: message", ErrNotFound)
	}
	if msg.SenderID != requesterID {
		return fmt.Errorf("%w: not authorized to delete this message", ErrForbidden)
	}
	return s.msgs.Delete(messageID)
}

func (s *MessageService) displayName(cache map[int]string, userID int) string {
	if name, ok := cache[userID]; ok {
		return name
	}
	name := "Unknown User"
	if u, err := s.users.FindByID(userID); err == nil {
		name = u.DisplayName()
	}
	cache[userID] = name
	return name
}
