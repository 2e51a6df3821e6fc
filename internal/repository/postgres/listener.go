package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"docportal/internal/domain/models"
)

// ChangeHandler receives decoded row-level change events.
type ChangeHandler func(models.ChangeEvent)

// Listener subscribes to row-level change events published by the store via
// LISTEN/NOTIFY (the documents and notifications tables have triggers that
// NOTIFY the channel with a JSON payload). It is the transport half of the
// realtime path; routing to the cache happens in the dispatcher.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	handler ChangeHandler
	logger  *slog.Logger
}

// NewListener creates a listener on the given NOTIFY channel.
func NewListener(pool *pgxpool.Pool, channel string, handler ChangeHandler, logger *slog.Logger) *Listener {
	return &Listener{
		pool:    pool,
		channel: channel,
		handler: handler,
		logger:  logger,
	}
}

// Run blocks listening for notifications until ctx is cancelled. Connection
// failures are retried with a flat backoff; events sent while disconnected
// are lost, which is acceptable because consumers re-fetch on their TTL anyway.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Warn("realtime listener disconnected, retrying", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	// A dedicated connection is held for the lifetime of the LISTEN.
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+l.channel); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.Info("realtime listener connected", "channel", l.channel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var event models.ChangeEvent
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			l.logger.Warn("malformed change event payload", "payload", notification.Payload, "error", err)
			continue
		}

		l.handler(event)
	}
}
