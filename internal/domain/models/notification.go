package models

import (
	"time"
)

// NotificationType is the semantic class of a notification, derived from its
// message text (or, for the two structural account types, from the stored
// raw type column). It drives UI navigation on click.
type NotificationType string

const (
	TypeDocumentApproved    NotificationType = "document_approved"
	TypeDocumentRejected    NotificationType = "document_rejected"
	TypeFolderCreated       NotificationType = "folder_created"
	TypeDocumentUpload      NotificationType = "document_upload"
	TypeAccountNotification NotificationType = "account_notification"
	TypeGeneralNotification NotificationType = "general_notification"

	// Structural types carried in the stored raw type column. They take
	// precedence over message-text classification and route to fixed pages.
	TypeAccountConfirmation NotificationType = "account_confirmation"
	TypeAccountRecovery     NotificationType = "account_recovery"
)

type Notification struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"user_id" db:"user_id"`
	Message           string    `json:"message" db:"message"`
	RelatedDocumentID *string   `json:"related_document_id,omitempty" db:"related_document_id"`
	RawType           *string   `json:"-" db:"type"` // set only by the auth edge functions
	Read              bool      `json:"read" db:"read"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`

	// Derived on every read, not stored in DB. Classification rules may
	// evolve and must apply retroactively to old rows.
	Type        NotificationType `json:"type"`
	ReferenceID string           `json:"reference_id"` // never empty: falls back to ID
}
