package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

// Emitter creates notification rows and invalidates the recipient's cache so
// the next read sees the new row immediately instead of waiting out the TTL.
// It implements review.ReviewNotifier and scheduler.DeadlineNotifier.
type Emitter struct {
	repo   repositories.NotificationRepository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewEmitter creates a notification emitter.
func NewEmitter(repo repositories.NotificationRepository, cache *Cache, logger *slog.Logger) *Emitter {
	return &Emitter{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// NotifyReviewed tells the submitter about an approval or rejection.
func (e *Emitter) NotifyReviewed(ctx context.Context, doc *models.Document) error {
	var message string
	switch doc.Status {
	case models.StatusApproved:
		message = ApprovedMessage(doc.Title)
	case models.StatusRejected:
		feedback := ""
		if doc.Feedback != nil {
			feedback = *doc.Feedback
		}
		message = RejectedMessage(doc.Title, feedback)
	default:
		return fmt.Errorf("document %s has no reviewable status %q", doc.ID, doc.Status)
	}

	return e.emit(ctx, doc.SubmittedBy, message, &doc.ID)
}

// NotifyDeadlineApproaching reminds a faculty member of an upcoming category
// deadline.
func (e *Emitter) NotifyDeadlineApproaching(ctx context.Context, userID string, category *models.Category) error {
	if category.Deadline == nil {
		return nil
	}
	return e.emit(ctx, userID, DeadlineReminderMessage(category, *category.Deadline), nil)
}

func (e *Emitter) emit(ctx context.Context, userID, message string, relatedDocumentID *string) error {
	n := &models.Notification{
		UserID:            userID,
		Message:           message,
		RelatedDocumentID: relatedDocumentID,
		Read:              false,
		CreatedAt:         e.now().UTC(),
	}

	if err := e.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("emit notification: %w", err)
	}

	e.cache.Invalidate(userID)
	e.logger.Debug("notification emitted", "user_id", userID, "notification_id", n.ID)
	return nil
}
