package models

import "strings"

// Role identifies what an authenticated actor may see and do.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// ParseRole normalises free-form input into a Role. ok is false for unknown values.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleFaculty:
		return RoleFaculty, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// IsStaff reports whether the role may grade and submit on behalf of students.
func (r Role) IsStaff() bool {
	return r == RoleFaculty || r == RoleAdmin
}

// Identity is the logged-in actor for the lifetime of a session.
type Identity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	SessionID string `json:"-"`
}
