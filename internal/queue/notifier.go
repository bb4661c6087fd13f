package queue

import (
	"context"

	"soundscape/internal/infra"
	"soundscape/internal/sqlinline"
)

// Notifier wakes workers after new generation requests are committed. The
// notification is a hint only; workers that miss it pick the request up on
// their next poll.
type Notifier struct {
	runner *infra.SQLRunner
}

func NewNotifier(runner *infra.SQLRunner) *Notifier {
	return &Notifier{runner: runner}
}

func (n *Notifier) Enqueue(ctx context.Context, requestID string) error {
	_, err := n.runner.Exec(ctx, sqlinline.QNotifyRequestQueued, requestID)
	return err
}
