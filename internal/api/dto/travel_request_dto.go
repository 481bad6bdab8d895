package dto

import (
	"time"

	"github.com/spec-kit/travel-approval/internal/domain"
)

// CreateTravelRequestRequest payload. Dates are ISO calendar dates
// (YYYY-MM-DD). Owner, requester name and status are derived server-side.
type CreateTravelRequestRequest struct {
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Notes       *string `json:"notes"`
}

// UpdateTravelRequestRequest payload; absent fields are left unchanged.
type UpdateTravelRequestRequest struct {
	Destination *string `json:"destination"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Notes       *string `json:"notes"`
}

// CancelTravelRequestRequest payload.
type CancelTravelRequestRequest struct {
	Reason *string `json:"reason"`
}

// TravelRequestResource is the API shape of a travel request.
type TravelRequestResource struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	RequesterName   string               `json:"requester_name"`
	Destination     string               `json:"destination"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	Status          domain.RequestStatus `json:"status"`
	Notes           *string              `json:"notes"`
	ApprovedBy      *string              `json:"approved_by"`
	CancelledBy     *string              `json:"cancelled_by"`
	CancelledReason *string              `json:"cancelled_reason"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	User            *domain.UserSummary  `json:"user"`
	Approver        *domain.UserSummary  `json:"approver"`
	Canceller       *domain.UserSummary  `json:"canceller"`
}

// PaginationMeta mirrors the listing metadata.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}
