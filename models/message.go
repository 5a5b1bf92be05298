package models

import "time"

type Message struct {
	ID           int       `json:"id"`
	SenderID     int       `json:"sender_id"`
	ReceiverID   int       `json:"receiver_id"`
	SenderName   string    `json:"sender_name,omitempty"`
	ReceiverName string    `json:"receiver_name,omitempty"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// Conversation is a derived listing row: one per other user in the system,
// with the most recent message exchanged with the requester, if any.
type Conversation struct {
	UserID      int        `json:"user_id"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastMessage string     `json:"last_message,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	HasMessages bool       `json:"has_messages"`
}
