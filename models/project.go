package models

import "time"

const (
	ProjectPending   = "pending"
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"
)

type Project struct {
	ID           int       `json:"id"`
	ClientID     int       `json:"client_id"`
	Title        string    `json:"title"`
	LandArea     float64   `json:"land_area"`
	BuildingType string    `json:"building_type"`
	Budget       float64   `json:"budget"`
	Timeline     string    `json:"timeline"`
	Status       string    `json:"status"`
	AssignedTo   *int      `json:"assigned_to,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectPending, ProjectActive, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}
