package timeliness

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

type mockDocumentRepo struct {
	docs []models.Document
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *models.Document) error { return nil }
func (m *mockDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return nil, nil
}
func (m *mockDocumentRepo) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	return m.docs, nil
}
func (m *mockDocumentRepo) ApplyReview(ctx context.Context, id string, update repositories.ReviewUpdate) (*models.Document, error) {
	return nil, nil
}

type mockCategoryRepo struct {
	categories map[string]*models.Category
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return m.categories[id], nil
}
func (m *mockCategoryRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Category, error) {
	out := make(map[string]*models.Category)
	for _, id := range ids {
		if cat, ok := m.categories[id]; ok {
			out[id] = cat
		}
	}
	return out, nil
}
func (m *mockCategoryRepo) ListByDepartment(ctx context.Context, departmentID string) ([]models.Category, error) {
	return nil, nil
}
func (m *mockCategoryRepo) ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Category, error) {
	return nil, nil
}
func (m *mockCategoryRepo) UpdateDeadline(ctx context.Context, id string, deadline *time.Time) error {
	if cat, ok := m.categories[id]; ok {
		cat.Deadline = deadline
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReporterJoinsCurrentDeadline(t *testing.T) {
	deadline := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	docRepo := &mockDocumentRepo{
		docs: []models.Document{
			{
				ID:          "doc-1",
				Title:       "Course syllabus",
				SubmittedBy: "fac-1",
				CategoryID:  "cat-1",
				CreatedAt:   deadline.Add(-time.Hour),
			},
			{
				ID:          "doc-2",
				Title:       "Grade report",
				SubmittedBy: "fac-2",
				CategoryID:  "cat-1",
				CreatedAt:   deadline.Add(time.Hour),
			},
			{
				ID:          "doc-3",
				Title:       "Misc upload",
				SubmittedBy: "fac-1",
				CategoryID:  "cat-none",
				CreatedAt:   deadline,
			},
		},
	}
	catRepo := &mockCategoryRepo{
		categories: map[string]*models.Category{
			"cat-1":    {ID: "cat-1", Name: "Syllabi", Deadline: &deadline},
			"cat-none": {ID: "cat-none", Name: "Misc"},
		},
	}
	reporter := NewReporter(docRepo, catRepo, testLogger())

	records, err := reporter.ForDepartment(context.Background(), "dept-1")
	if err != nil {
		t.Fatalf("ForDepartment() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	wantRatings := map[string]Timeliness{
		"doc-1": OnTime,
		"doc-2": Late,
		"doc-3": NoDeadline,
	}
	for _, rec := range records {
		if rec.Rating != wantRatings[rec.DocumentID] {
			t.Errorf("document %s: rating = %v, want %v", rec.DocumentID, rec.Rating, wantRatings[rec.DocumentID])
		}
		if rec.IsOnTime != (rec.Rating == OnTime) {
			t.Errorf("document %s: IsOnTime = %v inconsistent with rating %v", rec.DocumentID, rec.IsOnTime, rec.Rating)
		}
	}
}

func TestReporterReRatesAfterDeadlineEdit(t *testing.T) {
	deadline := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	docRepo := &mockDocumentRepo{
		docs: []models.Document{
			{ID: "doc-1", SubmittedBy: "fac-1", CategoryID: "cat-1", CreatedAt: deadline.Add(-time.Minute)},
		},
	}
	catRepo := &mockCategoryRepo{
		categories: map[string]*models.Category{
			"cat-1": {ID: "cat-1", Name: "Syllabi", Deadline: &deadline},
		},
	}
	reporter := NewReporter(docRepo, catRepo, testLogger())
	ctx := context.Background()

	records, err := reporter.ForFaculty(ctx, "fac-1")
	if err != nil {
		t.Fatalf("ForFaculty() error = %v", err)
	}
	if records[0].Rating != OnTime {
		t.Fatalf("before edit: rating = %v, want %v", records[0].Rating, OnTime)
	}

	// Move the deadline behind the submission; the next report must flip the
	// rating without any write to the document.
	earlier := deadline.Add(-time.Hour)
	if err := catRepo.UpdateDeadline(ctx, "cat-1", &earlier); err != nil {
		t.Fatalf("UpdateDeadline() error = %v", err)
	}

	records, err = reporter.ForFaculty(ctx, "fac-1")
	if err != nil {
		t.Fatalf("ForFaculty() after edit error = %v", err)
	}
	if records[0].Rating != Late {
		t.Fatalf("after edit: rating = %v, want %v", records[0].Rating, Late)
	}
}
