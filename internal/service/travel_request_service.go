package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/travel-approval/internal/domain"
	"github.com/spec-kit/travel-approval/internal/events"
	"github.com/spec-kit/travel-approval/internal/repository"
	apperrors "github.com/spec-kit/travel-approval/pkg/util"
)

const maxDestinationLen = 255

// TravelRequestService coordinates the travel request lifecycle.
type TravelRequestService struct {
	requests   repository.TravelRequestRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewTravelRequestService constructs the service.
func NewTravelRequestService(requests repository.TravelRequestRepository, dispatcher events.Dispatcher) *TravelRequestService {
	return &TravelRequestService{
		requests:   requests,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// CreateTravelRequestInput describes the creation payload. Owner, requester
// name and status are never taken from the client.
type CreateTravelRequestInput struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Notes       *string
}

// UpdateTravelRequestInput is the typed patch applied by Update. Only these
// four fields exist, so privileged fields (owner, status, approver,
// canceller) structurally cannot be smuggled through an update.
type UpdateTravelRequestInput struct {
	Destination *string
	StartDate   *time.Time
	EndDate     *time.Time
	Notes       *string
}

// List returns a page of requests ordered by creation time descending.
// Admins see everything matching the filters; other actors are scoped to
// their own requests regardless of the filter they pass.
func (s *TravelRequestService) List(ctx context.Context, actor *domain.User, filter repository.TravelRequestFilter, page, perPage int) (*repository.Page, error) {
	if !actor.IsAdmin() {
		ownerID := actor.ID
		filter.OwnerID = &ownerID
	}
	result, err := s.requests.List(ctx, filter, page, perPage)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// GetByID resolves a request with its related identities, or NotFound.
// Callers authorize viewing separately; existence is decided first so an
// unknown identifier yields NotFound for any actor.
func (s *TravelRequestService) GetByID(ctx context.Context, id string) (*domain.TravelRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("travel request", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

// Create persists a new request owned by the actor, with status forced to
// requested, and emits request_created.
func (s *TravelRequestService) Create(ctx context.Context, actor *domain.User, input CreateTravelRequestInput) (*domain.TravelRequest, error) {
	destination := strings.TrimSpace(input.Destination)
	if destination == "" {
		return nil, apperrors.NewFieldValidationError("destination", "destination is required")
	}
	if len(destination) > maxDestinationLen {
		return nil, apperrors.NewFieldValidationError("destination", "destination may not be longer than 255 characters")
	}

	startDate := domain.DateOnly(input.StartDate)
	endDate := domain.DateOnly(input.EndDate)
	today := domain.DateOnly(s.now())

	if startDate.Before(today) {
		return nil, apperrors.NewFieldValidationError("start_date", "start date must be today or later")
	}
	if !endDate.After(startDate) {
		return nil, apperrors.NewFieldValidationError("end_date", "end date must be after start date")
	}

	request := &domain.TravelRequest{
		UserID:        actor.ID,
		RequesterName: actor.Name,
		Destination:   destination,
		StartDate:     startDate,
		EndDate:       endDate,
		Status:        domain.StatusRequested,
		Notes:         input.Notes,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}
	ownerSummary := actor.Summary()
	request.Owner = &ownerSummary

	s.publishEvent(ctx, events.Event{Type: events.EventRequestCreated, Request: snapshot(request)})
	return request, nil
}

// Update applies the patch to a mutable request. Date ordering is
// re-validated against the effective values (payload value when present,
// stored value otherwise); on any validation failure nothing is written.
func (s *TravelRequestService) Update(ctx context.Context, request *domain.TravelRequest, input UpdateTravelRequestInput) (*domain.TravelRequest, error) {
	updated := *request

	if input.Destination != nil {
		destination := strings.TrimSpace(*input.Destination)
		if destination == "" {
			return nil, apperrors.NewFieldValidationError("destination", "destination is required")
		}
		if len(destination) > maxDestinationLen {
			return nil, apperrors.NewFieldValidationError("destination", "destination may not be longer than 255 characters")
		}
		updated.Destination = destination
	}

	today := domain.DateOnly(s.now())
	if input.StartDate != nil {
		startDate := domain.DateOnly(*input.StartDate)
		if startDate.Before(today) {
			return nil, apperrors.NewFieldValidationError("start_date", "start date must be today or later")
		}
		updated.StartDate = startDate
	}
	if input.EndDate != nil {
		endDate := domain.DateOnly(*input.EndDate)
		if !endDate.After(updated.StartDate) {
			return nil, apperrors.NewFieldValidationError("end_date", "end date must be after start date")
		}
		updated.EndDate = endDate
	} else if input.StartDate != nil && !updated.EndDate.After(updated.StartDate) {
		// A start-date-only change must not hop over the stored end date.
		return nil, apperrors.NewFieldValidationError("start_date", "start date must be before end date")
	}

	if input.Notes != nil {
		updated.Notes = input.Notes
	}

	if err := s.requests.Update(ctx, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("travel request", map[string]any{"id": request.ID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.GetByID(ctx, request.ID)
}

// Delete soft-deletes the request. No event is emitted; nothing observes
// deletions.
func (s *TravelRequestService) Delete(ctx context.Context, request *domain.TravelRequest) error {
	if err := s.requests.SoftDelete(ctx, request.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("travel request", map[string]any{"id": request.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Approve transitions the request to approved on behalf of the actor and
// emits request_approved. The caller must have confirmed CanApprove.
func (s *TravelRequestService) Approve(ctx context.Context, request *domain.TravelRequest, actor *domain.User) (*domain.TravelRequest, error) {
	if err := s.requests.Approve(ctx, request.ID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("travel request is no longer awaiting approval", nil)
		}
		return nil, apperrors.MapError(err)
	}
	approved, err := s.GetByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{Type: events.EventRequestApproved, Request: snapshot(approved)})
	return approved, nil
}

// Cancel transitions the request to cancelled on behalf of the actor,
// recording an optional reason, and emits request_cancelled. The caller
// must have confirmed CanCancel.
func (s *TravelRequestService) Cancel(ctx context.Context, request *domain.TravelRequest, actor *domain.User, reason *string) (*domain.TravelRequest, error) {
	if err := s.requests.Cancel(ctx, request.ID, actor.ID, reason); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("travel request can no longer be cancelled", nil)
		}
		return nil, apperrors.MapError(err)
	}
	cancelled, err := s.GetByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{Type: events.EventRequestCancelled, Request: snapshot(cancelled)})
	return cancelled, nil
}

func (s *TravelRequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// snapshot copies the request so later mutations do not leak into
// already-published events.
func snapshot(request *domain.TravelRequest) *domain.TravelRequest {
	copied := *request
	return &copied
}
