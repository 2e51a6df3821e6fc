package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"docportal/internal/domain/models"
)

func TestNotifyReviewedInvalidatesCache(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache, _ := newTestCache(t, repo, CacheOptions{TTL: time.Minute})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := NewEmitter(repo, cache, logger)
	ctx := context.Background()

	// Warm the cache so we can observe the invalidation.
	if _, err := cache.Fetch(ctx, "fac-1", false); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	feedback := "fix page 2"
	doc := &models.Document{
		ID:          "doc-1",
		Title:       "Syllabus",
		Status:      models.StatusRejected,
		SubmittedBy: "fac-1",
		Feedback:    &feedback,
	}
	if err := emitter.NotifyReviewed(ctx, doc); err != nil {
		t.Fatalf("NotifyReviewed() error = %v", err)
	}

	items, err := cache.Fetch(ctx, "fac-1", false)
	if err != nil {
		t.Fatalf("Fetch() after emit error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d notifications, want 1: emit must invalidate the recipient's entry", len(items))
	}
	if items[0].Type != models.TypeDocumentRejected {
		t.Errorf("type = %v, want document_rejected", items[0].Type)
	}
	if items[0].ReferenceID != "doc-1" {
		t.Errorf("reference = %q, want the reviewed document id", items[0].ReferenceID)
	}
}

func TestNotifyReviewedRejectsPendingStatus(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := NewEmitter(repo, cache, logger)

	doc := &models.Document{ID: "doc-1", Status: models.StatusPending, SubmittedBy: "fac-1"}
	if err := emitter.NotifyReviewed(context.Background(), doc); err == nil {
		t.Fatal("NotifyReviewed() on a pending document must fail")
	}
	if len(repo.items) != 0 {
		t.Errorf("stored %d rows, want 0", len(repo.items))
	}
}

func TestNotifyDeadlineApproaching(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := NewEmitter(repo, cache, logger)
	ctx := context.Background()

	deadline := time.Date(2026, 5, 1, 23, 59, 0, 0, time.UTC)
	category := &models.Category{ID: "cat-1", Name: "Syllabi", Deadline: &deadline}

	if err := emitter.NotifyDeadlineApproaching(ctx, "fac-1", category); err != nil {
		t.Fatalf("NotifyDeadlineApproaching() error = %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("stored %d rows, want 1", len(repo.items))
	}

	// No deadline, no reminder.
	bare := &models.Category{ID: "cat-2", Name: "Misc"}
	if err := emitter.NotifyDeadlineApproaching(ctx, "fac-1", bare); err != nil {
		t.Fatalf("NotifyDeadlineApproaching() without deadline error = %v", err)
	}
	if len(repo.items) != 1 {
		t.Errorf("stored %d rows, want still 1", len(repo.items))
	}
}
