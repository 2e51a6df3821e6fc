package models

import (
	"time"
)

// Role distinguishes the two kinds of portal accounts.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
)

// Profile is the portal-side account row backing a Supabase auth user.
// Admins carry the department that scopes everything they may see or act on;
// a nil DepartmentID means the admin sees nothing (fail closed, not global).
type Profile struct {
	ID           string    `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	DepartmentID *string   `json:"department_id,omitempty" db:"department_id"`
	Archived     bool      `json:"archived" db:"archived"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
