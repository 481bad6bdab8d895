package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/travel-approval/internal/domain"
	"github.com/spec-kit/travel-approval/internal/events"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	var seen []events.Event
	dispatcher.Subscribe(events.EventRequestCreated, func(_ context.Context, e events.Event) error {
		seen = append(seen, e)
		return nil
	})

	event := events.Event{
		Type:    events.EventRequestCreated,
		Request: &domain.TravelRequest{ID: "req-1", Status: domain.StatusRequested},
	}
	err := dispatcher.Publish(context.Background(), event)

	assert.NoError(t, err)
	assert.Len(t, seen, 1)
	assert.Equal(t, "req-1", seen[0].Request.ID)
}

func TestDispatcherIgnoresUnrelatedEventTypes(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(events.EventRequestApproved, func(context.Context, events.Event) error {
		called = true
		return nil
	})

	_ = dispatcher.Publish(context.Background(), events.Event{Type: events.EventRequestCancelled})

	assert.False(t, called)
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	dispatcher.Subscribe(events.EventRequestCreated, func(context.Context, events.Event) error {
		return errors.New("boom")
	})
	secondCalled := false
	dispatcher.Subscribe(events.EventRequestCreated, func(context.Context, events.Event) error {
		secondCalled = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventRequestCreated})

	assert.NoError(t, err)
	assert.True(t, secondCalled)
}
