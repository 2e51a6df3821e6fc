package repositories

import (
	"context"

	"docportal/internal/domain/models"
)

// ProfileRepository defines data access operations for portal accounts
type ProfileRepository interface {
	// GetByID retrieves a profile by user ID
	GetByID(ctx context.Context, id string) (*models.Profile, error)

	// ListByDepartment lists non-archived profiles of a department,
	// optionally narrowed to one role (nil = any role)
	ListByDepartment(ctx context.Context, departmentID string, role *models.Role) ([]models.Profile, error)
}
