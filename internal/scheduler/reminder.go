// Package scheduler runs the cron-driven deadline reminders: faculty who have
// not yet submitted into a category whose deadline is approaching get a
// notification ahead of time.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

// DeadlineNotifier delivers a deadline reminder to one recipient.
// Implemented by the notify package's emitter.
type DeadlineNotifier interface {
	NotifyDeadlineApproaching(ctx context.Context, userID string, category *models.Category) error
}

// ReminderScheduler owns the cron engine and the reminder job.
type ReminderScheduler struct {
	cronEngine  *cron.Cron
	docRepo     repositories.DocumentRepository
	catRepo     repositories.CategoryRepository
	profileRepo repositories.ProfileRepository
	notifier    DeadlineNotifier
	spec        string
	window      time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewReminderScheduler creates the scheduler. spec is a standard cron
// expression; window is how far ahead of a deadline reminders go out.
func NewReminderScheduler(
	docRepo repositories.DocumentRepository,
	catRepo repositories.CategoryRepository,
	profileRepo repositories.ProfileRepository,
	notifier DeadlineNotifier,
	spec string,
	window time.Duration,
	logger *slog.Logger,
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:  cron.New(),
		docRepo:     docRepo,
		catRepo:     catRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		spec:        spec,
		window:      window,
		logger:      logger,
		now:         time.Now,
	}
}

// Start registers the reminder job and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.runOnce(ctx); err != nil {
			s.logger.Error("deadline reminder run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("deadline reminder scheduler started", "spec", s.spec, "window", s.window)
	return nil
}

// Stop stops the cron engine and waits for a running job to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("deadline reminder scheduler stopped")
}

// runOnce finds categories whose deadline falls inside the reminder window
// and notifies every non-archived faculty member of the category's department
// who has not submitted into it yet.
func (s *ReminderScheduler) runOnce(ctx context.Context) error {
	now := s.now()
	categories, err := s.catRepo.ListWithDeadlineBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return err
	}

	role := models.RoleFaculty
	for _, cat := range categories {
		faculty, err := s.profileRepo.ListByDepartment(ctx, cat.DepartmentID, &role)
		if err != nil {
			s.logger.Error("reminder: list faculty failed", "category_id", cat.ID, "error", err)
			continue
		}

		docs, err := s.docRepo.List(ctx, models.DocumentFilter{CategoryID: &cat.ID})
		if err != nil {
			s.logger.Error("reminder: list submissions failed", "category_id", cat.ID, "error", err)
			continue
		}
		submitted := make(map[string]bool, len(docs))
		for _, doc := range docs {
			submitted[doc.SubmittedBy] = true
		}

		reminded := 0
		for _, member := range faculty {
			if submitted[member.ID] {
				continue
			}
			if err := s.notifier.NotifyDeadlineApproaching(ctx, member.ID, &cat); err != nil {
				s.logger.Error("reminder delivery failed", "user_id", member.ID, "category_id", cat.ID, "error", err)
				continue
			}
			reminded++
		}

		s.logger.Info("deadline reminders sent",
			"category_id", cat.ID,
			"deadline", cat.Deadline,
			"reminded", reminded,
		)
	}

	return nil
}
