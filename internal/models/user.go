package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a user in the system
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller attached to each request.
type Identity struct {
	ID    int64
	Email string
	Role  string
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
