package models

import (
	"time"
)

// DocumentStatus is the review state of a submitted document.
// PENDING is the only non-terminal state; once a document is approved or
// rejected its status never changes again (resubmission creates a new row).
type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusApproved DocumentStatus = "approved"
	StatusRejected DocumentStatus = "rejected"
)

// Valid reports whether s is one of the three known statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s DocumentStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Document struct {
	ID           string         `json:"id" db:"id"`
	Title        string         `json:"title" db:"title"`
	Description  *string        `json:"description,omitempty" db:"description"`
	Status       DocumentStatus `json:"status" db:"status"`
	SubmittedBy  string         `json:"submitted_by" db:"submitted_by"`
	ReviewedBy   *string        `json:"reviewed_by,omitempty" db:"reviewed_by"` // NULL iff status is pending
	DepartmentID string         `json:"department_id" db:"department_id"`
	CategoryID   string         `json:"category_id" db:"category_id"`
	Feedback     *string        `json:"feedback,omitempty" db:"feedback"` // required when rejected
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`       // submission time, immutable
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// DocumentFilter narrows document queries. Nil fields are not applied.
type DocumentFilter struct {
	Status       *DocumentStatus
	DepartmentID *string
	CategoryID   *string
	SubmittedBy  *string
	Limit        int
}
