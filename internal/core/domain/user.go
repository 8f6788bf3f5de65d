package domain

import "time"

// Role names are fixed; the grant table in internal/core/authz is keyed on
// these exact strings, which also appear inside issued tokens.
const (
	RoleSuperAdmin = "Super Admin"
	RoleAdmin      = "Admin"
	RoleEmployee   = "Employee"
	RoleClient     = "Client"
)

// User models an authenticated actor in the system. IDs are numeric sequences
// so they match the user_id claim carried by previously issued tokens.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
