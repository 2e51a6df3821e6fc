package handler

import (
	"log/slog"
	"net/http"

	"docportal/internal/httputil"
	"docportal/internal/service/notify"
)

// NotificationHandler serves the cached notification read path.
type NotificationHandler struct {
	cache  *notify.Cache
	logger *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(cache *notify.Cache, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		cache:  cache,
		logger: logger,
	}
}

// List returns the user's recent notifications, newest first.
// GET /api/notifications?refresh=true
//
// Without the refresh flag a snapshot younger than the cache TTL is served
// without touching the store.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	force := r.URL.Query().Get("refresh") == "true"

	items, err := h.cache.Fetch(r.Context(), userID, force)
	if err != nil {
		h.logger.Error("notification fetch failed", "user_id", userID, "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": items,
		"unread_count":  notify.UnreadCount(items),
	})
}

// MarkAllRead flips every unread notification of the user.
// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.cache.MarkAllRead(r.Context(), userID); err != nil {
		h.logger.Error("mark all read failed", "user_id", userID, "error", err)
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnreadCount returns the derived unread tally.
// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.cache.Fetch(r.Context(), userID, false)
	if err != nil {
		h.logger.Error("notification fetch failed", "user_id", userID, "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{
		"unread_count": notify.UnreadCount(items),
	})
}
