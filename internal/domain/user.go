package domain

import "time"

// Role determines what a caller may do across the API.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role string, defaulting to RoleUser when empty.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case "":
		return RoleUser, true
	case RoleUser, RoleAgent, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// IsStaff reports whether the role bypasses per-ticket ownership checks.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is the domain model for everyone who authenticates: requesters,
// agents and admins, distinguished only by Role.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
