// Package policy holds the authorization rules for travel requests as pure
// decision functions over (actor, request). Handlers resolve the record
// first, so a missing request surfaces as not-found before any of these
// rules run.
package policy

import "github.com/spec-kit/travel-approval/internal/domain"

// CanViewAny allows any authenticated actor to list travel requests; the
// lifecycle service scopes the listing to the actor's own records when the
// actor is not an admin.
func CanViewAny(actor *domain.User) bool {
	return actor != nil
}

// CanView allows admins to view any request and owners to view their own.
func CanView(actor *domain.User, request *domain.TravelRequest) bool {
	if actor == nil || request == nil {
		return false
	}
	return actor.IsAdmin() || request.UserID == actor.ID
}

// CanCreate allows any authenticated actor to submit a request.
func CanCreate(actor *domain.User) bool {
	return actor != nil
}

// CanUpdate allows only the owner to modify a request, and only while it
// has not reached an approved or cancelled state.
func CanUpdate(actor *domain.User, request *domain.TravelRequest) bool {
	if actor == nil || request == nil {
		return false
	}
	return request.UserID == actor.ID && !request.IsTerminal()
}

// CanDelete follows the same rule as CanUpdate: owner only, mutable states only.
func CanDelete(actor *domain.User, request *domain.TravelRequest) bool {
	return CanUpdate(actor, request)
}

// CanApprove is an admin-only gate out of the requested state.
func CanApprove(actor *domain.User, request *domain.TravelRequest) bool {
	if actor == nil || request == nil {
		return false
	}
	return actor.IsAdmin() && request.Status == domain.StatusRequested
}

// CanCancel allows admins or the owner to stop the workflow at any point
// before approval makes it final.
func CanCancel(actor *domain.User, request *domain.TravelRequest) bool {
	if actor == nil || request == nil {
		return false
	}
	if request.Status == domain.StatusApproved {
		return false
	}
	return actor.IsAdmin() || request.UserID == actor.ID
}
