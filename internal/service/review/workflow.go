// Package review implements the document review lifecycle: the PENDING →
// APPROVED/REJECTED state machine, the department scoping every decision
// passes through, and the notification each decision fans out to the
// submitter.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docportal/internal/domain"
	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

// ReviewNotifier delivers the submitter-facing notification for a decision.
// Implemented by the notify package's emitter.
type ReviewNotifier interface {
	NotifyReviewed(ctx context.Context, doc *models.Document) error
}

// Workflow enforces the legal status transitions and their side effects.
type Workflow struct {
	docRepo     repositories.DocumentRepository
	profileRepo repositories.ProfileRepository
	txManager   repositories.TransactionManager
	notifier    ReviewNotifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorkflow creates a new review workflow
func NewWorkflow(
	docRepo repositories.DocumentRepository,
	profileRepo repositories.ProfileRepository,
	txManager repositories.TransactionManager,
	notifier ReviewNotifier,
	logger *slog.Logger,
) *Workflow {
	return &Workflow{
		docRepo:     docRepo,
		profileRepo: profileRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// Approve moves a PENDING document to APPROVED, stamping the reviewer.
// Feedback is optional on approval.
func (w *Workflow) Approve(ctx context.Context, documentID, reviewerID string, feedback *string) (*models.Document, error) {
	if feedback != nil {
		trimmed := strings.TrimSpace(*feedback)
		if trimmed == "" {
			feedback = nil
		} else {
			feedback = &trimmed
		}
	}
	return w.decide(ctx, documentID, reviewerID, models.StatusApproved, feedback)
}

// Reject moves a PENDING document to REJECTED. Feedback is required: the
// submitter must learn why, so a blank or whitespace-only feedback fails with
// a ValidationError before anything is written.
func (w *Workflow) Reject(ctx context.Context, documentID, reviewerID, feedback string) (*models.Document, error) {
	feedback = strings.TrimSpace(feedback)
	if err := validation.Validate(feedback, validation.Required); err != nil {
		return nil, &domain.ValidationError{Message: "feedback is required when rejecting a document"}
	}
	return w.decide(ctx, documentID, reviewerID, models.StatusRejected, &feedback)
}

// BulkApprove approves every currently-PENDING document in the set.
// Documents that already left PENDING are silently skipped, which keeps the
// operation idempotent under concurrent edits. A document outside the
// reviewer's department aborts the whole batch before any write.
func (w *Workflow) BulkApprove(ctx context.Context, documentIDs []string, reviewerID string) ([]models.Document, error) {
	if err := validateID("reviewer id", reviewerID); err != nil {
		return nil, err
	}
	for _, id := range documentIDs {
		if err := validateID("document id", id); err != nil {
			return nil, err
		}
	}

	scope, err := w.scopeFor(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	// Authorize the whole set first so a scope violation cannot leave the
	// batch half-applied.
	candidates := make([]*models.Document, 0, len(documentIDs))
	for _, id := range documentIDs {
		doc, err := w.docRepo.GetByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue // deleted concurrently: treat like a non-PENDING skip
			}
			return nil, err
		}
		if !scope.Allows(doc.DepartmentID) {
			return nil, &domain.ForbiddenError{
				Message: fmt.Sprintf("document %s is outside your department", doc.ID),
			}
		}
		if doc.Status != models.StatusPending {
			continue
		}
		candidates = append(candidates, doc)
	}

	// All writes commit together: a store error rolls the whole batch back
	// instead of leaving it half-applied.
	approved := make([]models.Document, 0, len(candidates))
	err = w.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, doc := range candidates {
			updated, err := w.docRepo.ApplyReview(txCtx, doc.ID, repositories.ReviewUpdate{
				Status:     models.StatusApproved,
				ReviewedBy: reviewerID,
				UpdatedAt:  w.now().UTC(),
			})
			if err != nil {
				if isInvalidState(err) {
					// A concurrent reviewer got there first between our
					// read and the guarded update. Skip, same as
					// non-PENDING input.
					continue
				}
				return err
			}
			approved = append(approved, *updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notifications go out only after the batch committed.
	for i := range approved {
		w.fanOut(ctx, &approved[i])
	}

	w.logger.Info("bulk approve finished",
		"reviewer_id", reviewerID,
		"requested", len(documentIDs),
		"approved", len(approved),
	)
	return approved, nil
}

// ListDocuments lists documents visible to the reviewer's department scope,
// narrowed by the caller's filter. An empty scope yields an empty list.
func (w *Workflow) ListDocuments(ctx context.Context, reviewerID string, filter models.DocumentFilter) ([]models.Document, error) {
	if err := validateID("reviewer id", reviewerID); err != nil {
		return nil, err
	}

	scope, err := w.scopeFor(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	scoped, ok := scope.Apply(filter)
	if !ok {
		return []models.Document{}, nil
	}
	return w.docRepo.List(ctx, scoped)
}

// decide runs the shared transition path for a single approve/reject.
func (w *Workflow) decide(ctx context.Context, documentID, reviewerID string, status models.DocumentStatus, feedback *string) (*models.Document, error) {
	if err := validateID("document id", documentID); err != nil {
		return nil, err
	}
	if err := validateID("reviewer id", reviewerID); err != nil {
		return nil, err
	}

	scope, err := w.scopeFor(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	doc, err := w.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// The scope check comes before any state check or content is returned,
	// so a cross-department caller learns nothing about the document.
	if !scope.Allows(doc.DepartmentID) {
		return nil, &domain.ForbiddenError{
			Message: fmt.Sprintf("document %s is outside your department", documentID),
		}
	}

	if doc.Status.Terminal() {
		return nil, &domain.InvalidStateError{
			Message: fmt.Sprintf("document has already been %s", doc.Status),
		}
	}

	updated, err := w.docRepo.ApplyReview(ctx, documentID, repositories.ReviewUpdate{
		Status:     status,
		ReviewedBy: reviewerID,
		Feedback:   feedback,
		UpdatedAt:  w.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	w.logger.Info("document reviewed",
		"document_id", updated.ID,
		"status", updated.Status,
		"reviewer_id", reviewerID,
	)

	w.fanOut(ctx, updated)
	return updated, nil
}

// fanOut emits the submitter notification. The decision already committed, so
// a delivery failure is logged rather than surfaced to the reviewer.
func (w *Workflow) fanOut(ctx context.Context, doc *models.Document) {
	if err := w.notifier.NotifyReviewed(ctx, doc); err != nil {
		w.logger.Error("review notification failed",
			"document_id", doc.ID,
			"submitted_by", doc.SubmittedBy,
			"error", err,
		)
	}
}

func (w *Workflow) scopeFor(ctx context.Context, reviewerID string) (DepartmentScope, error) {
	profile, err := w.profileRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return DepartmentScope{}, err
	}
	return ScopeForAdmin(profile)
}

func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("malformed %s", field)}
	}
	return nil
}

func isNotFound(err error) bool     { return errors.Is(err, domain.ErrNotFound) }
func isInvalidState(err error) bool { return errors.Is(err, domain.ErrInvalidState) }
