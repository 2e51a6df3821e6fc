package repositories

import (
	"context"
	"time"

	"docportal/internal/domain/models"
)

// CategoryRepository defines data access operations for document categories
type CategoryRepository interface {
	// GetByID retrieves a category by ID
	GetByID(ctx context.Context, id string) (*models.Category, error)

	// GetByIDs retrieves several categories at once, keyed by id.
	// Missing ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Category, error)

	// ListByDepartment lists a department's categories
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Category, error)

	// ListWithDeadlineBetween lists categories whose deadline falls in
	// [from, to) - used by the reminder scheduler
	ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Category, error)

	// UpdateDeadline changes a category's deadline (nil clears it).
	// Previously submitted documents are re-rated against the new value on
	// their next evaluation.
	UpdateDeadline(ctx context.Context, id string, deadline *time.Time) error
}
