package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/travel-approval/internal/config"
	"github.com/spec-kit/travel-approval/internal/domain"
	"github.com/spec-kit/travel-approval/internal/events"
	"github.com/spec-kit/travel-approval/internal/queue"
)

func newNotificationFixture(t *testing.T) (events.Dispatcher, queue.Queue) {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	jobs := queue.NewMemoryQueue(16)
	svc := NewNotificationService(dispatcher, jobs, zap.NewNop(), config.NotificationConfig{})
	svc.RegisterHandlers()
	return dispatcher, jobs
}

func dequeueJob(t *testing.T, jobs queue.Queue) EmailJob {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	payload, err := jobs.Dequeue(ctx)
	require.NoError(t, err)
	var job EmailJob
	require.NoError(t, json.Unmarshal(payload, &job))
	return job
}

func requireEmptyQueue(t *testing.T, jobs queue.Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := jobs.Dequeue(ctx)
	require.Error(t, err)
}

func sampleRequest() *domain.TravelRequest {
	return &domain.TravelRequest{
		ID:            "req-1",
		UserID:        "user-1",
		RequesterName: "Alice Ferraz",
		Destination:   "Lisbon",
		StartDate:     days(10),
		EndDate:       days(15),
		Status:        domain.StatusRequested,
		Owner:         &domain.UserSummary{ID: "user-1", Name: "Alice Ferraz", Email: "alice@example.com"},
	}
}

func TestUserRegisteredEnqueuesWelcomeMail(t *testing.T) {
	dispatcher, jobs := newNotificationFixture(t)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventUserRegistered,
		User: &domain.User{ID: "user-1", Name: "Alice Ferraz", Email: "alice@example.com"},
	})
	require.NoError(t, err)

	job := dequeueJob(t, jobs)
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, "Welcome aboard", job.Subject)
	assert.Contains(t, job.Body, "Alice Ferraz")
	assert.Zero(t, job.Attempts)
}

func TestRequestCreatedEnqueuesReceivedMail(t *testing.T) {
	dispatcher, jobs := newNotificationFixture(t)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventRequestCreated,
		Request: sampleRequest(),
	})
	require.NoError(t, err)

	job := dequeueJob(t, jobs)
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, "Travel request received", job.Subject)
	assert.Contains(t, job.Body, "Lisbon")
	assert.Contains(t, job.Body, days(10).Format("2006-01-02"))
}

func TestRequestCancelledMailIncludesReason(t *testing.T) {
	dispatcher, jobs := newNotificationFixture(t)

	reason := "trip no longer needed"
	request := sampleRequest()
	request.Status = domain.StatusCancelled
	request.CancelledReason = &reason

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventRequestCancelled,
		Request: request,
	})
	require.NoError(t, err)

	job := dequeueJob(t, jobs)
	assert.Equal(t, "Travel request cancelled", job.Subject)
	assert.Contains(t, job.Body, "Reason: trip no longer needed")
}

func TestEventWithoutOwnerIsIgnored(t *testing.T) {
	dispatcher, jobs := newNotificationFixture(t)

	request := sampleRequest()
	request.Owner = nil

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventRequestApproved,
		Request: request,
	})
	require.NoError(t, err)

	requireEmptyQueue(t, jobs)
}
