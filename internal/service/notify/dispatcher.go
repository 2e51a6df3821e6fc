package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"docportal/internal/domain/models"
)

// Dispatcher decouples the realtime transport from the cache: change events
// land on a buffered channel and a small worker pool turns each into a
// non-forced cache fetch for the affected user. The cache's TTL makes
// redundant events cheap, and a dropped event only delays freshness until the
// next TTL expiry.
type Dispatcher struct {
	cache   *Cache
	logger  *slog.Logger
	events  chan models.ChangeEvent
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	timeout time.Duration
}

// NewDispatcher creates a dispatcher and starts its workers.
func NewDispatcher(cache *Cache, workers int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		cache:   cache,
		logger:  logger,
		events:  make(chan models.ChangeEvent, 256),
		ctx:     ctx,
		cancel:  cancel,
		timeout: 10 * time.Second,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}

	return d
}

// Dispatch enqueues a change event without blocking the transport. When the
// buffer is full the event is dropped with a log line; the TTL refresh path
// covers the loss.
func (d *Dispatcher) Dispatch(event models.ChangeEvent) {
	select {
	case d.events <- event:
	case <-d.ctx.Done():
	default:
		d.logger.Warn("change event buffer full, dropping event",
			"table", event.Table,
			"op", event.Op,
			"user_id", event.UserID,
		)
	}
}

// Shutdown stops the workers and waits for in-flight events to finish.
func (d *Dispatcher) Shutdown() {
	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.events:
			d.handle(event)
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) handle(event models.ChangeEvent) {
	if event.UserID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	// Not forced: the cache decides whether its snapshot is still fresh
	// enough, so an event burst collapses into at most one store read.
	if _, err := d.cache.Fetch(ctx, event.UserID, false); err != nil && ctx.Err() == nil {
		d.logger.Warn("event-triggered refresh failed",
			"table", event.Table,
			"user_id", event.UserID,
			"error", err,
		)
	}
}
