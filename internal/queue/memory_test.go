package queue_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/travel-approval/internal/queue"
)

func TestMemoryQueueFIFO(t *testing.T) {
	q := queue.NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, []byte("first")))
	require.NoError(t, q.Enqueue(ctx, []byte("second")))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestMemoryQueueDequeueCancelled(t *testing.T) {
	q := queue.NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
