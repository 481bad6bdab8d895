package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/travel-approval/internal/api/dto"
	"github.com/spec-kit/travel-approval/internal/auth"
	"github.com/spec-kit/travel-approval/internal/domain"
	"github.com/spec-kit/travel-approval/internal/policy"
	"github.com/spec-kit/travel-approval/internal/repository"
	"github.com/spec-kit/travel-approval/internal/service"
	apperrors "github.com/spec-kit/travel-approval/pkg/util"
)

const dateLayout = "2006-01-02"

// TravelRequestsHandler exposes the travel request lifecycle endpoints.
// Every mutation resolves the record first (unknown ids are NotFound for
// any actor) and then consults the policy before touching the service.
type TravelRequestsHandler struct {
	service *service.TravelRequestService
}

// NewTravelRequestsHandler constructs handler.
func NewTravelRequestsHandler(travelService *service.TravelRequestService) *TravelRequestsHandler {
	return &TravelRequestsHandler{service: travelService}
}

// List GET /api/travel-requests.
func (h *TravelRequestsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !policy.CanViewAny(actor) {
		return apperrors.NewForbidden("not allowed to list travel requests")
	}

	filter, err := parseListFilter(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	perPage := parseInt(c.Query("per_page"), repository.DefaultPerPage)

	result, err := h.service.List(c.UserContext(), actor, filter, page, perPage)
	if err != nil {
		return err
	}

	items := make([]dto.TravelRequestResource, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, travelRequestResource(&result.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.PaginationMeta{
			CurrentPage: result.CurrentPage,
			LastPage:    result.LastPage,
			PerPage:     result.PerPage,
			Total:       result.Total,
		},
	})
}

// Create POST /api/travel-requests.
func (h *TravelRequestsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !policy.CanCreate(actor) {
		return apperrors.NewForbidden("not allowed to create travel requests")
	}

	var req dto.CreateTravelRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	startDate, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return err
	}
	endDate, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.UserContext(), actor, service.CreateTravelRequestInput{
		Destination: req.Destination,
		StartDate:   startDate,
		EndDate:     endDate,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "travel request created successfully",
		"data":    travelRequestResource(created),
	})
}

// Get GET /api/travel-requests/:id.
func (h *TravelRequestsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	request, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanView(actor, request) {
		return apperrors.NewForbidden("not allowed to view this travel request")
	}
	return c.JSON(fiber.Map{"data": travelRequestResource(request)})
}

// Update PUT /api/travel-requests/:id.
func (h *TravelRequestsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	request, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanUpdate(actor, request) {
		return apperrors.NewForbidden("not allowed to update this travel request")
	}

	var req dto.UpdateTravelRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.UpdateTravelRequestInput{
		Destination: req.Destination,
		Notes:       req.Notes,
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate, "start_date")
		if err != nil {
			return err
		}
		input.StartDate = &startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate, "end_date")
		if err != nil {
			return err
		}
		input.EndDate = &endDate
	}

	updated, err := h.service.Update(c.UserContext(), request, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "travel request updated successfully",
		"data":    travelRequestResource(updated),
	})
}

// Delete DELETE /api/travel-requests/:id.
func (h *TravelRequestsHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	request, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanDelete(actor, request) {
		return apperrors.NewForbidden("not allowed to delete this travel request")
	}
	if err := h.service.Delete(c.UserContext(), request); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "travel request deleted successfully"})
}

// Approve POST /api/travel-requests/:id/approve.
func (h *TravelRequestsHandler) Approve(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	request, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanApprove(actor, request) {
		return apperrors.NewForbidden("not allowed to approve this travel request")
	}
	approved, err := h.service.Approve(c.UserContext(), request, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "travel request approved successfully",
		"data":    travelRequestResource(approved),
	})
}

// Cancel POST /api/travel-requests/:id/cancel.
func (h *TravelRequestsHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	request, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanCancel(actor, request) {
		return apperrors.NewForbidden("not allowed to cancel this travel request")
	}

	var req dto.CancelTravelRequestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	cancelled, err := h.service.Cancel(c.UserContext(), request, actor, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "travel request cancelled successfully",
		"data":    travelRequestResource(cancelled),
	})
}

func parseListFilter(c *fiber.Ctx) (repository.TravelRequestFilter, error) {
	filter := repository.TravelRequestFilter{}

	if status := c.Query("status"); status != "" {
		parsed := domain.RequestStatus(status)
		if !domain.ValidStatus(parsed) {
			return filter, apperrors.NewFieldValidationError("status", "status must be one of requested, approved, cancelled")
		}
		filter.Status = &parsed
	}
	if destination := c.Query("destination"); destination != "" {
		filter.Destination = &destination
	}

	dateFilters := []struct {
		key    string
		target **time.Time
	}{
		{"start_date", &filter.StartDate},
		{"end_date", &filter.EndDate},
		{"start_date_from", &filter.StartDateFrom},
		{"start_date_to", &filter.StartDateTo},
		{"created_from", &filter.CreatedFrom},
		{"created_to", &filter.CreatedTo},
	}
	for _, df := range dateFilters {
		if raw := c.Query(df.key); raw != "" {
			parsed, err := parseDate(raw, df.key)
			if err != nil {
				return filter, err
			}
			*df.target = &parsed
		}
	}
	return filter, nil
}

func parseDate(raw, field string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.NewFieldValidationError(field, field+" must be a valid date (YYYY-MM-DD)")
	}
	return parsed, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func travelRequestResource(request *domain.TravelRequest) dto.TravelRequestResource {
	return dto.TravelRequestResource{
		ID:              request.ID,
		UserID:          request.UserID,
		RequesterName:   request.RequesterName,
		Destination:     request.Destination,
		StartDate:       request.StartDate.Format(dateLayout),
		EndDate:         request.EndDate.Format(dateLayout),
		Status:          request.Status,
		Notes:           request.Notes,
		ApprovedBy:      request.ApprovedBy,
		CancelledBy:     request.CancelledBy,
		CancelledReason: request.CancelledReason,
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
		User:            request.Owner,
		Approver:        request.Approver,
		Canceller:       request.Canceller,
	}
}
