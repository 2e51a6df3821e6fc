package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"docportal/internal/domain"
	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, title, description, status, submitted_by, reviewed_by, department_id, category_id, feedback, created_at, updated_at`

func scanDocument(row interface{ Scan(dest ...any) error }, doc *models.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.Status,
		&doc.SubmittedBy,
		&doc.ReviewedBy,
		&doc.DepartmentID,
		&doc.CategoryID,
		&doc.Feedback,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}

// Create creates a new document (submission flow)
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, description, status, submitted_by, department_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Title,
		doc.Description,
		doc.Status,
		doc.SubmittedBy,
		doc.DepartmentID,
		doc.CategoryID,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document references a missing category or department: %w", domain.ErrValidation)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, id), &doc); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// List retrieves documents matching the filter, newest first
func (r *PostgresDocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	var (
		conds []string
		args  []interface{}
	)
	addCond := func(column string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Status != nil {
		addCond("status", *filter.Status)
	}
	if filter.DepartmentID != nil {
		addCond("department_id", *filter.DepartmentID)
	}
	if filter.CategoryID != nil {
		addCond("category_id", *filter.CategoryID)
	}
	if filter.SubmittedBy != nil {
		addCond("submitted_by", *filter.SubmittedBy)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", documentColumns, r.tables.Documents)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

// ApplyReview applies a review decision guarded on the document still being
// PENDING. Status, reviewed_by, feedback and updated_at are written in one
// UPDATE; the WHERE guard makes the write race-safe against a concurrent
// reviewer.
func (r *PostgresDocumentRepository) ApplyReview(ctx context.Context, id string, update repositories.ReviewUpdate) (*models.Document, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, reviewed_by = $3, feedback = $4, updated_at = $5
		WHERE id = $1 AND status = $6
		RETURNING %s
	`, r.tables.Documents, documentColumns)

	var doc models.Document
	executor := GetExecutor(ctx, r.pool)
	err := scanDocument(executor.QueryRow(ctx, query,
		id,
		update.Status,
		update.ReviewedBy,
		update.Feedback,
		update.UpdatedAt,
		models.StatusPending,
	), &doc)

	if err == nil {
		return &doc, nil
	}
	if !IsPgNoRowsError(err) {
		return nil, fmt.Errorf("apply review: %w", err)
	}

	// Zero rows: either the document is gone or it already left PENDING.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, &domain.InvalidStateError{
		Message: fmt.Sprintf("document %s has already been %s", id, existing.Status),
	}
}
