package repositories

import (
	"context"

	"docportal/internal/domain/models"
)

// NotificationRepository defines data access operations for notification rows.
// The per-user cache in service/notify is the only reader of ListRecentByUser;
// everything else goes through the cache.
type NotificationRepository interface {
	// Create inserts a notification row
	Create(ctx context.Context, n *models.Notification) error

	// ListRecentByUser returns up to limit notifications for the user,
	// newest first
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)

	// MarkAllRead flips read=true for every unread row of the user in a
	// single bulk update. Returns the number of rows updated.
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
