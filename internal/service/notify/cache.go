// Package notify owns the notification read path: a per-user TTL cache over
// the store, the classification router, the emitter that fans decisions out
// to recipients, and the dispatcher that turns realtime change events into
// cache refreshes.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"docportal/internal/domain/models"
	"docportal/internal/domain/repositories"
)

// CacheOptions tunes the cache. Zero values fall back to the reference
// behavior: 30s TTL, 20 rows per fetch, 1s reconciliation delay.
type CacheOptions struct {
	TTL            time.Duration
	FetchLimit     int
	ReconcileDelay time.Duration
}

func (o CacheOptions) withDefaults() CacheOptions {
	if o.TTL <= 0 {
		o.TTL = 30 * time.Second
	}
	if o.FetchLimit <= 0 {
		o.FetchLimit = 20
	}
	if o.ReconcileDelay <= 0 {
		o.ReconcileDelay = time.Second
	}
	return o
}

// pendingFetch is an in-flight store read shared by coalesced callers.
type pendingFetch struct {
	done  chan struct{}
	items []models.Notification
	err   error
}

type userEntry struct {
	items     []models.Notification
	fetchedAt time.Time
	pending   *pendingFetch
	reconcile func() // cancels the scheduled reconciliation fetch
}

// Cache is the per-user notification cache. It is the single point of truth
// for "is a refresh already fresh enough": concurrent fetches for one user
// inside the TTL window coalesce onto one store read. Entries are keyed per
// user id, so cross-user races are impossible by construction.
//
// The cache is an explicitly constructed, injectable instance owned by the
// composition root - there is no ambient singleton.
type Cache struct {
	repo   repositories.NotificationRepository
	router *Router
	opts   CacheOptions
	logger *slog.Logger

	// Injectable for deterministic tests.
	now      func() time.Time
	schedule func(d time.Duration, fn func()) (cancel func())

	mu    sync.Mutex
	users map[string]*userEntry
}

// NewCache creates a notification cache.
func NewCache(repo repositories.NotificationRepository, router *Router, opts CacheOptions, logger *slog.Logger) *Cache {
	return &Cache{
		repo:     repo,
		router:   router,
		opts:     opts.withDefaults(),
		logger:   logger,
		now:      time.Now,
		schedule: scheduleTimer,
		users:    make(map[string]*userEntry),
	}
}

func scheduleTimer(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Fetch returns the user's recent notifications, newest first, classified.
// A cached snapshot younger than the TTL is served as-is unless forceRefresh
// is set. Callers receive a copy; the cached slice is never aliased out.
func (c *Cache) Fetch(ctx context.Context, userID string, forceRefresh bool) ([]models.Notification, error) {
	c.mu.Lock()
	entry := c.users[userID]
	if entry == nil {
		entry = &userEntry{}
		c.users[userID] = entry
	}

	if !forceRefresh {
		if c.fresh(entry) {
			items := cloneItems(entry.items)
			c.mu.Unlock()
			return items, nil
		}
		if entry.pending != nil {
			// Someone is already at the store for this user: wait for
			// their result instead of issuing a redundant read.
			pending := entry.pending
			c.mu.Unlock()
			select {
			case <-pending.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if pending.err != nil {
				return nil, pending.err
			}
			return cloneItems(pending.items), nil
		}
	}

	pending := &pendingFetch{done: make(chan struct{})}
	entry.pending = pending
	c.mu.Unlock()

	items, err := c.load(ctx, userID)

	c.mu.Lock()
	if entry.pending == pending {
		entry.pending = nil
	}
	if err == nil {
		// Last write by timestamp wins; a slow superseded fetch may
		// complete late but never rolls the cache back to an older
		// snapshot.
		if now := c.now(); !now.Before(entry.fetchedAt) {
			entry.items = items
			entry.fetchedAt = now
		}
	}
	c.mu.Unlock()

	pending.items = items
	pending.err = err
	close(pending.done)

	if err != nil {
		return nil, err
	}
	return cloneItems(items), nil
}

// MarkAllRead flips every unread row of the user in one bulk store update,
// then optimistically marks the cached snapshot read so the UI reflects the
// change immediately, and schedules a forced re-fetch to reconcile with any
// notifications created concurrently with the bulk update.
func (c *Cache) MarkAllRead(ctx context.Context, userID string) error {
	updated, err := c.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}

	c.mu.Lock()
	entry := c.users[userID]
	if entry == nil {
		entry = &userEntry{}
		c.users[userID] = entry
	}
	if entry.items != nil {
		// Copy-on-write: readers already holding the old snapshot are
		// unaffected, and nobody ever observes a half-flipped list.
		flipped := cloneItems(entry.items)
		for i := range flipped {
			flipped[i].Read = true
		}
		entry.items = flipped
	}
	if entry.reconcile != nil {
		entry.reconcile()
	}
	entry.reconcile = c.schedule(c.opts.ReconcileDelay, func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := c.Fetch(refreshCtx, userID, true); err != nil {
			c.logger.Warn("read-state reconciliation fetch failed", "user_id", userID, "error", err)
		}
	})
	c.mu.Unlock()

	c.logger.Debug("notifications marked read", "user_id", userID, "rows", updated)
	return nil
}

// Invalidate drops the user's cached entry and cancels any scheduled
// reconciliation. Used on sign-out.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	if entry := c.users[userID]; entry != nil && entry.reconcile != nil {
		entry.reconcile()
	}
	delete(c.users, userID)
	c.mu.Unlock()
}

// InvalidateAll drops every cached entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	for _, entry := range c.users {
		if entry.reconcile != nil {
			entry.reconcile()
		}
	}
	c.users = make(map[string]*userEntry)
	c.mu.Unlock()
}

// UnreadCount is the derived unread tally of a notification list. It is
// computed, never stored.
func UnreadCount(items []models.Notification) int {
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count
}

// fresh reports whether the entry holds a snapshot younger than the TTL.
// Caller holds c.mu.
func (c *Cache) fresh(entry *userEntry) bool {
	return !entry.fetchedAt.IsZero() && c.now().Sub(entry.fetchedAt) < c.opts.TTL
}

// load reads the store and classifies each row.
func (c *Cache) load(ctx context.Context, userID string) ([]models.Notification, error) {
	items, err := c.repo.ListRecentByUser(ctx, userID, c.opts.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	for i := range items {
		c.router.Decorate(&items[i])
	}
	return items, nil
}

func cloneItems(items []models.Notification) []models.Notification {
	out := make([]models.Notification, len(items))
	copy(out, items)
	return out
}
