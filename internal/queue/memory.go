package queue

import (
	"context"
	"time"
)

// memoryQueue is a channel-backed Queue used when Redis is not configured
// and by tests.
type memoryQueue struct {
	jobs chan []byte
}

// NewMemoryQueue builds an in-process queue with the given capacity.
func NewMemoryQueue(capacity int) Queue {
	if capacity <= 0 {
		capacity = 256
	}
	return &memoryQueue{jobs: make(chan []byte, capacity)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, payload []byte) error {
	select {
	case q.jobs <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-q.jobs:
		return payload, nil
	case <-time.After(blockInterval):
		return nil, ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
