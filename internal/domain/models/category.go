package models

import (
	"time"
)

// Category is a named grouping of documents within a department (a "folder"
// in the UI), optionally carrying a submission deadline and semester tag.
//
// The deadline is mutable after documents have been submitted against the
// category. Timeliness is therefore always computed against the current
// deadline at read time, never against a value frozen at submission.
type Category struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	DepartmentID string     `json:"department_id" db:"department_id"`
	Deadline     *time.Time `json:"deadline,omitempty" db:"deadline"`
	Semester     *string    `json:"semester,omitempty" db:"semester"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
