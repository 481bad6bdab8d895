package events

import (
	"time"

	"github.com/spec-kit/travel-approval/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered   EventType = "user_registered"
	EventRequestCreated   EventType = "request_created"
	EventRequestApproved  EventType = "request_approved"
	EventRequestCancelled EventType = "request_cancelled"
)

// Event represents a domain event emitted by services. Travel request
// events carry the full request snapshot taken at the moment of emission;
// user_registered carries the registered account instead.
type Event struct {
	ID        string                `json:"id"`
	Type      EventType             `json:"type"`
	Timestamp time.Time             `json:"timestamp"`
	Request   *domain.TravelRequest `json:"request,omitempty"`
	User      *domain.User          `json:"user,omitempty"`
}
