package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

type stubDocumentRepo struct {
	byCategory map[string][]models.Document
}

func (s *stubDocumentRepo) Create(ctx context.Context, doc *models.Document) error { return nil }
func (s *stubDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return nil, nil
}
func (s *stubDocumentRepo) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	if filter.CategoryID == nil {
		return nil, nil
	}
	return s.byCategory[*filter.CategoryID], nil
}
func (s *stubDocumentRepo) ApplyReview(ctx context.Context, id string, update repositories.ReviewUpdate) (*models.Document, error) {
	return nil, nil
}

type stubCategoryRepo struct {
	upcoming []models.Category
}

func (s *stubCategoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return nil, nil
}
func (s *stubCategoryRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Category, error) {
	return nil, nil
}
func (s *stubCategoryRepo) ListByDepartment(ctx context.Context, departmentID string) ([]models.Category, error) {
	return nil, nil
}
func (s *stubCategoryRepo) ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Category, error) {
	out := []models.Category{}
	for _, cat := range s.upcoming {
		if cat.Deadline == nil {
			continue
		}
		if !cat.Deadline.Before(from) && cat.Deadline.Before(to) {
			out = append(out, cat)
		}
	}
	return out, nil
}
func (s *stubCategoryRepo) UpdateDeadline(ctx context.Context, id string, deadline *time.Time) error {
	return nil
}

type stubProfileRepo struct {
	byDepartment map[string][]models.Profile
}

func (s *stubProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return nil, nil
}
func (s *stubProfileRepo) ListByDepartment(ctx context.Context, departmentID string, role *models.Role) ([]models.Profile, error) {
	out := []models.Profile{}
	for _, p := range s.byDepartment[departmentID] {
		if role != nil && p.Role != *role {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type recordingDeadlineNotifier struct {
	reminded []string
}

func (r *recordingDeadlineNotifier) NotifyDeadlineApproaching(ctx context.Context, userID string, category *models.Category) error {
	r.reminded = append(r.reminded, userID)
	return nil
}

func TestRunOnceRemindsOnlyNonSubmitters(t *testing.T) {
	now := time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC)
	soon := now.Add(12 * time.Hour)
	farOff := now.Add(14 * 24 * time.Hour)

	catRepo := &stubCategoryRepo{
		upcoming: []models.Category{
			{ID: "cat-1", Name: "Syllabi", DepartmentID: "dept-1", Deadline: &soon},
			{ID: "cat-far", Name: "Reports", DepartmentID: "dept-1", Deadline: &farOff},
		},
	}
	docRepo := &stubDocumentRepo{
		byCategory: map[string][]models.Document{
			"cat-1": {{ID: "doc-1", SubmittedBy: "fac-1", CategoryID: "cat-1"}},
		},
	}
	profileRepo := &stubProfileRepo{
		byDepartment: map[string][]models.Profile{
			"dept-1": {
				{ID: "fac-1", Role: models.RoleFaculty},
				{ID: "fac-2", Role: models.RoleFaculty},
				{ID: "adm-1", Role: models.RoleAdmin},
			},
		},
	}
	notifier := &recordingDeadlineNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewReminderScheduler(docRepo, catRepo, profileRepo, notifier, "0 9 * * *", 24*time.Hour, logger)
	s.now = func() time.Time { return now }

	if err := s.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce() error = %v", err)
	}

	// fac-1 already submitted, the admin is not faculty, and the far-off
	// category is outside the window. Only fac-2 gets a reminder.
	if len(notifier.reminded) != 1 || notifier.reminded[0] != "fac-2" {
		t.Errorf("reminded = %v, want [fac-2]", notifier.reminded)
	}
}

func TestRunOnceNoUpcomingDeadlines(t *testing.T) {
	notifier := &recordingDeadlineNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewReminderScheduler(&stubDocumentRepo{}, &stubCategoryRepo{}, &stubProfileRepo{}, notifier, "0 9 * * *", 24*time.Hour, logger)

	if err := s.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce() error = %v", err)
	}
	if len(notifier.reminded) != 0 {
		t.Errorf("reminded = %v, want none", notifier.reminded)
	}
}
