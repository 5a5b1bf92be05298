package models

import "time"

const (
	ContractPending   = "pending"
	ContractSigned    = "signed"
	ContractActive    = "active"
	ContractCompleted = "completed"
	ContractCancelled = "cancelled"
)

// Contract snapshots the project fields at creation time so later project
// edits do not rewrite agreed terms.
type Contract struct {
	ID                int       `json:"id"`
	ProjectID         int       `json:"project_id"`
	ClientID          int       `json:"client_id"`
	EngineerID        int       `json:"engineer_id"`
	Title             string    `json:"title"`
	LandArea          float64   `json:"land_area"`
	BuildingType      string    `json:"building_type"`
	Budget            float64   `json:"budget"`
	Timeline          string    `json:"timeline"`
	TermsConditions   string    `json:"terms_conditions"`
	ClientSignature   string    `json:"client_signature,omitempty"`
	EngineerSignature string    `json:"engineer_signature,omitempty"`
	Status            string    `json:"status"`
	ClientName        string    `json:"client_name,omitempty"`
	EngineerName      string    `json:"engineer_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (c *Contract) IsParticipant(userID int) bool {
	return c.ClientID == userID || c.EngineerID == userID
}

func (c *Contract) FullySigned() bool {
	return c.ClientSignature != "" && c.EngineerSignature != ""
}

func ValidContractStatus(status string) bool {
	switch status {
	case ContractPending, ContractSigned, ContractActive, ContractCompleted, ContractCancelled:
		return true
	}
	return false
}
