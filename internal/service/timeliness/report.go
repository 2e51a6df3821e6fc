package timeliness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

// Record is one row of the timeliness report: a submission joined to its
// category's current deadline. It is a derived view, computed on demand and
// never written back to the store.
type Record struct {
	FacultyID     string     `json:"faculty_id"`
	DocumentID    string     `json:"document_id"`
	DocumentTitle string     `json:"document_title"`
	CategoryID    string     `json:"category_id"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Rating        Timeliness `json:"rating"`
	IsOnTime      bool       `json:"is_on_time"`
}

// Reporter builds timeliness reports from the documents/categories join.
type Reporter struct {
	docRepo repositories.DocumentRepository
	catRepo repositories.CategoryRepository
	logger  *slog.Logger
}

// NewReporter creates a new timeliness reporter
func NewReporter(
	docRepo repositories.DocumentRepository,
	catRepo repositories.CategoryRepository,
	logger *slog.Logger,
) *Reporter {
	return &Reporter{
		docRepo: docRepo,
		catRepo: catRepo,
		logger:  logger,
	}
}

// ForDepartment reports on every submission in a department.
func (r *Reporter) ForDepartment(ctx context.Context, departmentID string) ([]Record, error) {
	return r.build(ctx, models.DocumentFilter{DepartmentID: &departmentID})
}

// ForFaculty reports on one faculty member's own submissions.
func (r *Reporter) ForFaculty(ctx context.Context, facultyID string) ([]Record, error) {
	return r.build(ctx, models.DocumentFilter{SubmittedBy: &facultyID})
}

func (r *Reporter) build(ctx context.Context, filter models.DocumentFilter) ([]Record, error) {
	docs, err := r.docRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	categoryIDs := make([]string, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if !seen[doc.CategoryID] {
			seen[doc.CategoryID] = true
			categoryIDs = append(categoryIDs, doc.CategoryID)
		}
	}

	// The join happens here, at read time, so an edited deadline re-rates
	// previously submitted documents on the next report.
	categories, err := r.catRepo.GetByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		var deadline *time.Time
		if cat, ok := categories[doc.CategoryID]; ok {
			deadline = cat.Deadline
		} else {
			r.logger.Warn("submission references unknown category", "document_id", doc.ID, "category_id", doc.CategoryID)
		}

		rating := Evaluate(doc.CreatedAt, deadline)
		records = append(records, Record{
			FacultyID:     doc.SubmittedBy,
			DocumentID:    doc.ID,
			DocumentTitle: doc.Title,
			CategoryID:    doc.CategoryID,
			SubmittedAt:   doc.CreatedAt,
			Deadline:      deadline,
			Rating:        rating,
			IsOnTime:      rating == OnTime,
		})
	}

	return records, nil
}
