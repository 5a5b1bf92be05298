package models

import "time"

const (
	RoleClient   = "client"
	RoleEngineer = "engineer"
	RoleAdmin    = "admin"
)

type User struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

func ValidRole(role string) bool {
	return role == RoleClient || role == RoleEngineer || role == RoleAdmin
}
