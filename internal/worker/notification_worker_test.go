package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/travel-approval/internal/mailer"
	"github.com/spec-kit/travel-approval/internal/queue"
	"github.com/spec-kit/travel-approval/internal/service"
)

type fakeMailer struct {
	sent     []mailer.Message
	failures int
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func marshalJob(t *testing.T, job service.EmailJob) []byte {
	t.Helper()
	payload, err := json.Marshal(job)
	require.NoError(t, err)
	return payload
}

func dequeue(t *testing.T, jobs queue.Queue) []byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	payload, err := jobs.Dequeue(ctx)
	require.NoError(t, err)
	return payload
}

func TestProcessDeliversJob(t *testing.T) {
	jobs := queue.NewMemoryQueue(4)
	mail := &fakeMailer{}
	w := NewNotificationWorker(jobs, mail, zap.NewNop())

	w.process(context.Background(), marshalJob(t, service.EmailJob{
		Message: mailer.Message{To: "alice@example.com", Subject: "Travel request approved", Body: "hi"},
	}))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "alice@example.com", mail.sent[0].To)
}

func TestProcessRequeuesFailureWithAttemptCount(t *testing.T) {
	jobs := queue.NewMemoryQueue(4)
	mail := &fakeMailer{failures: 1}
	w := NewNotificationWorker(jobs, mail, zap.NewNop())

	w.process(context.Background(), marshalJob(t, service.EmailJob{
		Message: mailer.Message{To: "alice@example.com", Subject: "Travel request approved"},
	}))

	assert.Empty(t, mail.sent)

	var requeued service.EmailJob
	require.NoError(t, json.Unmarshal(dequeue(t, jobs), &requeued))
	assert.Equal(t, 1, requeued.Attempts)
	assert.Equal(t, "alice@example.com", requeued.To)

	// second pass succeeds
	w.process(context.Background(), marshalJob(t, requeued))
	require.Len(t, mail.sent, 1)
}

func TestProcessDropsJobAfterMaxAttempts(t *testing.T) {
	jobs := queue.NewMemoryQueue(4)
	mail := &fakeMailer{failures: 10}
	w := NewNotificationWorker(jobs, mail, zap.NewNop())

	w.process(context.Background(), marshalJob(t, service.EmailJob{
		Message:  mailer.Message{To: "alice@example.com"},
		Attempts: maxAttempts - 1,
	}))

	assert.Empty(t, mail.sent)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := jobs.Dequeue(ctx)
	require.Error(t, err)
}

func TestProcessDropsMalformedPayload(t *testing.T) {
	jobs := queue.NewMemoryQueue(4)
	mail := &fakeMailer{}
	w := NewNotificationWorker(jobs, mail, zap.NewNop())

	w.process(context.Background(), []byte("{not json"))

	assert.Empty(t, mail.sent)
}
