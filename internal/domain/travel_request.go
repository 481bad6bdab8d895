package domain

import "time"

// RequestStatus enumerates lifecycle states for travel requests.
type RequestStatus string

const (
	StatusRequested RequestStatus = "requested"
	StatusApproved  RequestStatus = "approved"
	StatusCancelled RequestStatus = "cancelled"
)

// ValidStatus reports whether s is one of the three known states.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusRequested, StatusApproved, StatusCancelled:
		return true
	}
	return false
}

// TravelRequest is the aggregate for employee travel requests.
// RequesterName is a denormalized copy of the owner's name taken at
// creation time and never re-synced. StartDate and EndDate are calendar
// dates; any time component is dropped before persisting.
type TravelRequest struct {
	ID              string
	UserID          string
	RequesterName   string
	Destination     string
	StartDate       time.Time
	EndDate         time.Time
	Status          RequestStatus
	Notes           *string
	ApprovedBy      *string
	CancelledBy     *string
	CancelledReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time

	// Resolved relations, populated only when loaded by the repository.
	Owner     *UserSummary
	Approver  *UserSummary
	Canceller *UserSummary
}

// IsTerminal reports whether no further status transition is permitted.
func (t *TravelRequest) IsTerminal() bool {
	return t.Status == StatusApproved || t.Status == StatusCancelled
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
