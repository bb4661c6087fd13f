package queue

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const channelName = "generation_requests"

// Listener blocks on Postgres LISTEN/NOTIFY so the worker can react to new
// requests faster than its poll interval.
type Listener struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewListener(pool *pgxpool.Pool, logger zerolog.Logger) *Listener {
	return &Listener{pool: pool, logger: logger}
}

// Wait blocks until a notification arrives or maxWait elapses. A timeout is
// not an error; it just means the caller should fall back to polling.
func (l *Listener) Wait(ctx context.Context, maxWait time.Duration) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "listen "+channelName); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	notification, err := conn.Conn().WaitForNotification(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	l.logger.Debug().Str("payload", notification.Payload).Msg("request notification received")
	return nil
}
