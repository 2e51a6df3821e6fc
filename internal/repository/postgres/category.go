package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"docportal/internal/domain"
	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *RepositoryConfig) repositories.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const categoryColumns = `id, name, department_id, deadline, semester, created_at, updated_at`

func scanCategory(row interface{ Scan(dest ...any) error }, cat *models.Category) error {
	return row.Scan(
		&cat.ID,
		&cat.Name,
		&cat.DepartmentID,
		&cat.Deadline,
		&cat.Semester,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
}

// GetByID retrieves a category by ID
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, categoryColumns, r.tables.Categories)

	var cat models.Category
	executor := GetExecutor(ctx, r.pool)
	if err := scanCategory(executor.QueryRow(ctx, query, id), &cat); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &cat, nil
}

// GetByIDs retrieves several categories at once, keyed by id
func (r *PostgresCategoryRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Category, error) {
	result := make(map[string]*models.Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = ANY($1)
	`, categoryColumns, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat models.Category
		if err := scanCategory(rows, &cat); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result[cat.ID] = &cat
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}

	return result, nil
}

// ListByDepartment lists a department's categories
func (r *PostgresCategoryRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE department_id = $1
		ORDER BY name
	`, categoryColumns, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var cat models.Category
		if err := scanCategory(rows, &cat); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return cats, nil
}

// ListWithDeadlineBetween lists categories whose deadline falls in [from, to)
func (r *PostgresCategoryRepository) ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE deadline >= $1 AND deadline < $2
		ORDER BY deadline
	`, categoryColumns, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list categories by deadline: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var cat models.Category
		if err := scanCategory(rows, &cat); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories by deadline: %w", err)
	}

	return cats, nil
}

// UpdateDeadline changes a category's deadline (nil clears it)
func (r *PostgresCategoryRepository) UpdateDeadline(ctx context.Context, id string, deadline *time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deadline = $2, updated_at = now()
		WHERE id = $1
	`, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, deadline)
	if err != nil {
		return fmt.Errorf("update category deadline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
