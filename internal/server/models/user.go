package models

import "time"

// Role is the access level of an internal user. The values match the rows
// seeded into the roles table.
type Role int

const (
	RoleDeactivated   Role = 0
	RoleAdmin         Role = 1
	RoleNonPrivileged Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleDeactivated:
		return "deactivated"
	case RoleAdmin:
		return "admin"
	case RoleNonPrivileged:
		return "non_privileged"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the seeded roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDeactivated, RoleAdmin, RoleNonPrivileged:
		return true
	}
	return false
}

// InternalUser is a dashboard operator. Rows are never deleted; deactivation
// flips Role to RoleDeactivated.
type InternalUser struct {
	ID           int64      `json:"user_id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	InvitedBy    *int64     `json:"invited_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Public returns a copy of u without the password hash.
func (u InternalUser) Public() InternalUser {
	u.PasswordHash = ""
	return u
}

// Active reports whether u may use the system at all.
func (u InternalUser) Active() bool {
	return u.Role != RoleDeactivated
}
