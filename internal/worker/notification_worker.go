package worker

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/travel-approval/internal/mailer"
	"github.com/spec-kit/travel-approval/internal/queue"
	"github.com/spec-kit/travel-approval/internal/service"
)

const maxAttempts = 3

// NotificationWorker drains the email queue and delivers messages.
type NotificationWorker struct {
	jobs   queue.Queue
	mail   mailer.Mailer
	logger *zap.Logger
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(jobs queue.Queue, mail mailer.Mailer, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{jobs: jobs, mail: mail, logger: logger}
}

// Run consumes jobs until the context is cancelled. Failed deliveries are
// re-enqueued with an incremented attempt count and dropped after
// maxAttempts, giving at-least-once delivery with bounded redelivery.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("notification worker started")
	for {
		payload, err := w.jobs.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if ctx.Err() != nil {
				w.logger.Info("notification worker stopped")
				return
			}
			w.logger.Error("dequeue email job", zap.Error(err))
			continue
		}
		w.process(ctx, payload)
	}
}

func (w *NotificationWorker) process(ctx context.Context, payload []byte) {
	var job service.EmailJob
	if err := json.Unmarshal(payload, &job); err != nil {
		w.logger.Error("malformed email job dropped", zap.Error(err))
		return
	}

	if err := w.mail.Send(ctx, job.Message); err != nil {
		job.Attempts++
		if job.Attempts >= maxAttempts {
			w.logger.Error("email delivery failed permanently",
				zap.Error(err),
				zap.String("to", job.To),
				zap.Int("attempts", job.Attempts))
			return
		}
		w.logger.Warn("email delivery failed, requeueing",
			zap.Error(err),
			zap.String("to", job.To),
			zap.Int("attempts", job.Attempts))
		requeued, marshalErr := json.Marshal(job)
		if marshalErr != nil {
			w.logger.Error("marshal requeued job", zap.Error(marshalErr))
			return
		}
		if enqueueErr := w.jobs.Enqueue(ctx, requeued); enqueueErr != nil {
			w.logger.Error("requeue email job", zap.Error(enqueueErr))
		}
		return
	}

	w.logger.Info("email delivered",
		zap.String("to", job.To),
		zap.String("subject", job.Subject))
}
