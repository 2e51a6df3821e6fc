package repositories

import (
	"context"
	"time"

	"docportal/internal/domain/models"
)

// ReviewUpdate is the atomic write applied when a document leaves PENDING.
// Status, reviewer stamp, feedback and updated_at land in a single UPDATE so
// a persistence failure can never leave a half-reviewed row behind.
type ReviewUpdate struct {
	Status     models.DocumentStatus
	ReviewedBy string
	Feedback   *string
	UpdatedAt  time.Time
}

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create creates a new document (submission flow)
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// List retrieves documents matching the filter, newest first
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)

	// ApplyReview applies a review decision guarded on the document still
	// being PENDING. Returns the updated row, or domain.ErrInvalidState when
	// the document exists but already left PENDING (e.g. a concurrent
	// reviewer won the race), or domain.ErrNotFound.
	ApplyReview(ctx context.Context, id string, update ReviewUpdate) (*models.Document, error)
}
