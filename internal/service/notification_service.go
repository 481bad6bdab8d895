package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/travel-approval/internal/config"
	"github.com/spec-kit/travel-approval/internal/events"
	"github.com/spec-kit/travel-approval/internal/mailer"
	"github.com/spec-kit/travel-approval/internal/queue"
)

// EmailJob is the unit of work placed on the notification queue.
type EmailJob struct {
	mailer.Message
	Attempts int `json:"attempts"`
}

// NotificationService turns domain events into queued email jobs. Producers
// never block on delivery; the worker drains the queue.
type NotificationService struct {
	dispatcher events.Dispatcher
	jobs       queue.Queue
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, jobs queue.Queue, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		jobs:       jobs,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to the lifecycle events that notify by email.
// Deletion emits no event and sends no mail.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleRequestCreated)
	n.dispatcher.Subscribe(events.EventRequestApproved, n.handleRequestApproved)
	n.dispatcher.Subscribe(events.EventRequestCancelled, n.handleRequestCancelled)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	if event.User == nil {
		return nil
	}
	n.enqueue(ctx, mailer.Message{
		To:      event.User.Email,
		Subject: "Welcome aboard",
		Body: fmt.Sprintf("Hi %s,\n\nYour account has been created. You can now submit travel requests.\n",
			event.User.Name),
	})
	return nil
}

func (n *NotificationService) handleRequestCreated(ctx context.Context, event events.Event) error {
	request := event.Request
	if request == nil || request.Owner == nil {
		return nil
	}
	n.enqueue(ctx, mailer.Message{
		To:      request.Owner.Email,
		Subject: "Travel request received",
		Body: fmt.Sprintf("Hi %s,\n\nYour travel request to %s (%s to %s) was received and is awaiting approval.\n",
			request.RequesterName,
			request.Destination,
			request.StartDate.Format("2006-01-02"),
			request.EndDate.Format("2006-01-02")),
	})
	return nil
}

func (n *NotificationService) handleRequestApproved(ctx context.Context, event events.Event) error {
	request := event.Request
	if request == nil || request.Owner == nil {
		return nil
	}
	n.enqueue(ctx, mailer.Message{
		To:      request.Owner.Email,
		Subject: "Travel request approved",
		Body: fmt.Sprintf("Hi %s,\n\nYour travel request to %s (%s to %s) has been approved.\n",
			request.RequesterName,
			request.Destination,
			request.StartDate.Format("2006-01-02"),
			request.EndDate.Format("2006-01-02")),
	})
	return nil
}

func (n *NotificationService) handleRequestCancelled(ctx context.Context, event events.Event) error {
	request := event.Request
	if request == nil || request.Owner == nil {
		return nil
	}
	body := fmt.Sprintf("Hi %s,\n\nYour travel request to %s (%s to %s) has been cancelled.\n",
		request.RequesterName,
		request.Destination,
		request.StartDate.Format("2006-01-02"),
		request.EndDate.Format("2006-01-02"))
	if request.CancelledReason != nil && *request.CancelledReason != "" {
		body += fmt.Sprintf("\nReason: %s\n", *request.CancelledReason)
	}
	n.enqueue(ctx, mailer.Message{
		To:      request.Owner.Email,
		Subject: "Travel request cancelled",
		Body:    body,
	})
	return nil
}

func (n *NotificationService) enqueue(ctx context.Context, msg mailer.Message) {
	if n.jobs == nil {
		return
	}
	payload, err := json.Marshal(EmailJob{Message: msg})
	if err != nil {
		n.logger.Error("marshal email job", zap.Error(err))
		return
	}
	if err := n.jobs.Enqueue(ctx, payload); err != nil {
		n.logger.Error("enqueue email job", zap.Error(err), zap.String("to", msg.To))
	}
}
