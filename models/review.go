package models

import "time"

type Review struct {
	ID         int       `json:"id"`
	FromUserID int       `json:"from_user_id"`
	ToUserID   int       `json:"to_user_id"`
	FromName   string    `json:"from_name,omitempty"`
	ToName     string    `json:"to_name,omitempty"`
	ReviewText string    `json:"review_text"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
