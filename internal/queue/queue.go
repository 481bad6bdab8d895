// Package queue provides the outbound job queue between event handlers and
// the notification worker. Producers enqueue and forget; delivery retries
// happen on the consumer side.
package queue

import (
	"context"
	"errors"
)

// ErrEmpty reports that no job was available within the blocking window.
var ErrEmpty = errors.New("queue empty")

// Queue is a FIFO byte-payload job queue.
type Queue interface {
	Enqueue(ctx context.Context, payload []byte) error
	// Dequeue blocks for a bounded interval and returns ErrEmpty when no
	// job arrived, letting consumers poll without spinning.
	Dequeue(ctx context.Context) ([]byte, error)
}
