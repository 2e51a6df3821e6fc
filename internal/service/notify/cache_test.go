package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"docportal/internal/domain/models"
)

type stubNotificationRepo struct {
	mu          sync.Mutex
	items       []models.Notification
	listCalls   int
	markCalls   int
	listErr     error
	enterList   chan struct{} // closed-signal on each ListRecentByUser entry, optional
	releaseList chan struct{} // blocks ListRecentByUser until closed, optional
}

func (s *stubNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.Notification{*n}, s.items...)
	return nil
}

func (s *stubNotificationRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	s.listCalls++
	enter, release := s.enterList, s.releaseList
	err := s.listErr
	items := make([]models.Notification, len(s.items))
	copy(items, s.items)
	s.mu.Unlock()

	if enter != nil {
		enter <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls++
	var n int64
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (s *stubNotificationRepo) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// fakeClock is a manually advanced clock for deterministic TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T, repo *stubNotificationRepo, opts CacheOptions) (*Cache, *fakeClock) {
	t.Helper()
	router, err := NewRouter()
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := NewCache(repo, router, opts, logger)
	clock := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	cache.now = clock.Now
	return cache, clock
}

func TestFetchServesCachedWithinTTL(t *testing.T) {
	repo := &stubNotificationRepo{
		items: []models.Notification{{ID: "n1", UserID: "u1", Message: "Your document \"x\" has been approved."}},
	}
	cache, clock := newTestCache(t, repo, CacheOptions{TTL: 30 * time.Second})
	ctx := context.Background()

	if _, err := cache.Fetch(ctx, "u1", false); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	clock.Advance(10 * time.Second)
	if _, err := cache.Fetch(ctx, "u1", false); err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if got := repo.calls(); got != 1 {
		t.Errorf("store reads = %d, want 1 inside the TTL window", got)
	}

	clock.Advance(25 * time.Second) // 35s since the snapshot, past the TTL
	if _, err := cache.Fetch(ctx, "u1", false); err != nil {
		t.Fatalf("third Fetch() error = %v", err)
	}
	if got := repo.calls(); got != 2 {
		t.Errorf("store reads = %d, want 2 after TTL expiry", got)
	}
}

func TestFetchCachesEmptyLists(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		items, err := cache.Fetch(ctx, "u1", false)
		if err != nil {
			t.Fatalf("Fetch() #%d error = %v", i, err)
		}
		if len(items) != 0 {
			t.Fatalf("Fetch() #%d = %d items, want 0", i, len(items))
		}
	}
	if got := repo.calls(); got != 1 {
		t.Errorf("store reads = %d, want 1: an empty list is still a fresh snapshot", got)
	}
}

func TestFetchForceRefreshBypassesTTL(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	ctx := context.Background()

	cache.Fetch(ctx, "u1", false)
	cache.Fetch(ctx, "u1", true)
	if got := repo.calls(); got != 2 {
		t.Errorf("store reads = %d, want 2 with forced refresh", got)
	}
}

func TestFetchIsolatesUsers(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	ctx := context.Background()

	cache.Fetch(ctx, "u1", false)
	cache.Fetch(ctx, "u2", false)
	if got := repo.calls(); got != 2 {
		t.Errorf("store reads = %d, want 2: entries are per user", got)
	}
}

func TestFetchCoalescesConcurrentReaders(t *testing.T) {
	repo := &stubNotificationRepo{
		enterList:   make(chan struct{}, 1),
		releaseList: make(chan struct{}),
	}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(ctx, "u1", false)
		first <- err
	}()
	<-repo.enterList // the first reader is now inside the store call

	second := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(ctx, "u1", false)
		second <- err
	}()

	// Give the second reader a moment to park on the pending fetch, then
	// release the store.
	time.Sleep(20 * time.Millisecond)
	close(repo.releaseList)

	if err := <-first; err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if got := repo.calls(); got != 1 {
		t.Errorf("store reads = %d, want 1: concurrent readers must coalesce", got)
	}
}

func TestFetchDecoratesItems(t *testing.T) {
	docID := "doc-9"
	repo := &stubNotificationRepo{
		items: []models.Notification{
			{ID: "n1", UserID: "u1", Message: "Your document \"x\" has been approved.", RelatedDocumentID: &docID},
			{ID: "n2", UserID: "u1", Message: "Welcome aboard"},
		},
	}
	cache, _ := newTestCache(t, repo, CacheOptions{})

	items, err := cache.Fetch(context.Background(), "u1", false)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if items[0].Type != models.TypeDocumentApproved {
		t.Errorf("item 0 type = %v, want document_approved", items[0].Type)
	}
	if items[0].ReferenceID != docID {
		t.Errorf("item 0 reference = %q, want related document id", items[0].ReferenceID)
	}
	if items[1].Type != models.TypeGeneralNotification {
		t.Errorf("item 1 type = %v, want general_notification", items[1].Type)
	}
	if items[1].ReferenceID != "n2" {
		t.Errorf("item 1 reference = %q, want own id", items[1].ReferenceID)
	}
}

func TestFetchError(t *testing.T) {
	repo := &stubNotificationRepo{listErr: errors.New("connection refused")}
	cache, _ := newTestCache(t, repo, CacheOptions{})

	if _, err := cache.Fetch(context.Background(), "u1", false); err == nil {
		t.Fatal("Fetch() error = nil, want store error")
	}

	// The failure must not poison the entry: the next call retries.
	repo.mu.Lock()
	repo.listErr = nil
	repo.mu.Unlock()
	if _, err := cache.Fetch(context.Background(), "u1", false); err != nil {
		t.Fatalf("Fetch() after recovery error = %v", err)
	}
}

func TestMarkAllReadOptimisticFlip(t *testing.T) {
	repo := &stubNotificationRepo{
		items: []models.Notification{
			{ID: "n1", UserID: "u1", Message: "hello"},
			{ID: "n2", UserID: "u1", Message: "world", Read: true},
		},
	}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	ctx := context.Background()

	var scheduled []func()
	cache.schedule = func(d time.Duration, fn func()) func() {
		scheduled = append(scheduled, fn)
		return func() {}
	}

	items, _ := cache.Fetch(ctx, "u1", false)
	if UnreadCount(items) != 1 {
		t.Fatalf("unread before = %d, want 1", UnreadCount(items))
	}

	if err := cache.MarkAllRead(ctx, "u1"); err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}

	// The cached snapshot flips immediately, before any reconciliation runs.
	items, _ = cache.Fetch(ctx, "u1", false)
	if UnreadCount(items) != 0 {
		t.Errorf("unread after optimistic flip = %d, want 0", UnreadCount(items))
	}
	if got := repo.calls(); got != 1 {
		t.Errorf("store reads = %d, want 1: the flip must not hit the store", got)
	}
	if len(scheduled) != 1 {
		t.Fatalf("scheduled reconciliations = %d, want 1", len(scheduled))
	}

	// Running the reconciliation forces a fresh read.
	scheduled[0]()
	if got := repo.calls(); got != 2 {
		t.Errorf("store reads after reconciliation = %d, want 2", got)
	}
}

func TestMarkAllReadReplacesPendingReconciliation(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	ctx := context.Background()

	cancelled := 0
	cache.schedule = func(d time.Duration, fn func()) func() {
		return func() { cancelled++ }
	}

	cache.MarkAllRead(ctx, "u1")
	cache.MarkAllRead(ctx, "u1")
	if cancelled != 1 {
		t.Errorf("cancelled timers = %d, want 1: the second call replaces the first", cancelled)
	}
}

func TestInvalidateCancelsReconciliation(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	ctx := context.Background()

	cancelled := 0
	cache.schedule = func(d time.Duration, fn func()) func() {
		return func() { cancelled++ }
	}

	cache.MarkAllRead(ctx, "u1")
	cache.Invalidate("u1")
	if cancelled != 1 {
		t.Errorf("cancelled timers = %d, want 1", cancelled)
	}

	// The entry is gone, so the next fetch goes back to the store.
	cache.Fetch(ctx, "u1", false)
	if got := repo.calls(); got != 1 {
		t.Errorf("store reads = %d, want 1 after invalidation", got)
	}
}

func TestFetchReturnsCopies(t *testing.T) {
	repo := &stubNotificationRepo{
		items: []models.Notification{{ID: "n1", UserID: "u1", Message: "hello"}},
	}
	cache, _ := newTestCache(t, repo, CacheOptions{})
	ctx := context.Background()

	items, _ := cache.Fetch(ctx, "u1", false)
	items[0].Read = true

	again, _ := cache.Fetch(ctx, "u1", false)
	if again[0].Read {
		t.Error("mutating a returned slice must not leak into the cache")
	}
}

func TestUnreadCount(t *testing.T) {
	items := []models.Notification{
		{ID: "a"},
		{ID: "b", Read: true},
		{ID: "c"},
	}
	if got := UnreadCount(items); got != 2 {
		t.Errorf("UnreadCount() = %d, want 2", got)
	}
	if got := UnreadCount(nil); got != 0 {
		t.Errorf("UnreadCount(nil) = %d, want 0", got)
	}
}
