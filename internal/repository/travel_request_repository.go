package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/travel-approval/internal/domain"
)

// ErrStatusConflict signals that a guarded status transition matched no row:
// another actor already moved the request out of the expected state.
var ErrStatusConflict = errors.New("travel request status changed concurrently")

// DefaultPerPage is the page size applied when the caller does not specify one.
const DefaultPerPage = 15

// TravelRequestFilter captures the optional listing predicates. Nil fields
// are no-ops; all present filters combine with AND.
type TravelRequestFilter struct {
	OwnerID       *string
	Status        *domain.RequestStatus
	Destination   *string
	StartDate     *time.Time
	EndDate       *time.Time
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// Page carries one page of travel requests plus pagination metadata.
type Page struct {
	Items       []domain.TravelRequest
	Total       int64
	PerPage     int
	CurrentPage int
	LastPage    int
}

// TravelRequestRepository encapsulates travel request persistence.
type TravelRequestRepository interface {
	Create(ctx context.Context, request *domain.TravelRequest) error
	GetByID(ctx context.Context, id string) (*domain.TravelRequest, error)
	Update(ctx context.Context, request *domain.TravelRequest) error
	Approve(ctx context.Context, id, approverID string) error
	Cancel(ctx context.Context, id, cancellerID string, reason *string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter TravelRequestFilter, page, perPage int) (*Page, error)
}

type travelRequestRepository struct {
	pool *pgxpool.Pool
}

// NewTravelRequestRepository instantiates repository.
func NewTravelRequestRepository(pool *pgxpool.Pool) TravelRequestRepository {
	return &travelRequestRepository{pool: pool}
}

const selectColumns = `
        SELECT tr.id, tr.user_id, tr.requester_name, tr.destination, tr.start_date, tr.end_date,
               tr.status, tr.notes, tr.approved_by, tr.cancelled_by, tr.cancelled_reason,
               tr.created_at, tr.updated_at, tr.deleted_at,
               u.id, u.name, u.email,
               a.id, a.name, a.email,
               c.id, c.name, c.email
        FROM travel_requests tr
        JOIN users u ON u.id = tr.user_id
        LEFT JOIN users a ON a.id = tr.approved_by
        LEFT JOIN users c ON c.id = tr.cancelled_by`

func (r *travelRequestRepository) Create(ctx context.Context, request *domain.TravelRequest) error {
	const query = `
        INSERT INTO travel_requests (user_id, requester_name, destination, start_date, end_date, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.UserID,
		request.RequesterName,
		request.Destination,
		request.StartDate,
		request.EndDate,
		request.Status,
		request.Notes,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

// GetByID resolves a single non-deleted request with owner, approver and
// canceller identity joined. Soft-deleted rows are treated as absent.
func (r *travelRequestRepository) GetByID(ctx context.Context, id string) (*domain.TravelRequest, error) {
	query := selectColumns + ` WHERE tr.id=$1 AND tr.deleted_at IS NULL`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTravelRequest(row)
}

func (r *travelRequestRepository) Update(ctx context.Context, request *domain.TravelRequest) error {
	const query = `
        UPDATE travel_requests SET destination=$1, start_date=$2, end_date=$3, notes=$4, updated_at=NOW()
        WHERE id=$5 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query,
		request.Destination,
		request.StartDate,
		request.EndDate,
		request.Notes,
		request.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Approve flips status to approved and records the approver. The status
// guard makes a lost approve/approve or approve/cancel race surface as
// ErrStatusConflict instead of silently double-transitioning.
func (r *travelRequestRepository) Approve(ctx context.Context, id, approverID string) error {
	const query = `
        UPDATE travel_requests SET status=$1, approved_by=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, domain.StatusApproved, approverID, id, domain.StatusRequested)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

// Cancel flips status to cancelled, recording who cancelled and why.
// Approved requests are never cancellable.
func (r *travelRequestRepository) Cancel(ctx context.Context, id, cancellerID string, reason *string) error {
	const query = `
        UPDATE travel_requests SET status=$1, cancelled_by=$2, cancelled_reason=$3, updated_at=NOW()
        WHERE id=$4 AND status<>$5 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, domain.StatusCancelled, cancellerID, reason, id, domain.StatusApproved)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *travelRequestRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
        UPDATE travel_requests SET deleted_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *travelRequestRepository) List(ctx context.Context, filter TravelRequestFilter, page, perPage int) (*Page, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	clauses, args := buildListFilter(filter)
	where := strings.Join(clauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM travel_requests tr WHERE %s`, where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY tr.created_at DESC LIMIT %d OFFSET %d`,
		selectColumns, where, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanTravelRequests(rows)
	if err != nil {
		return nil, err
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return &Page{
		Items:       items,
		Total:       total,
		PerPage:     perPage,
		CurrentPage: page,
		LastPage:    lastPage,
	}, nil
}

// buildListFilter composes WHERE clauses for the listing queries. Extracted
// so predicate composition is testable without a database.
func buildListFilter(filter TravelRequestFilter) ([]string, []any) {
	clauses := []string{"tr.deleted_at IS NULL"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("tr.user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("tr.status=$%d", len(args)))
	}
	if filter.Destination != nil && strings.TrimSpace(*filter.Destination) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Destination)+"%")
		clauses = append(clauses, fmt.Sprintf("tr.destination ILIKE $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		clauses = append(clauses, fmt.Sprintf("tr.start_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		clauses = append(clauses, fmt.Sprintf("tr.end_date <= $%d", len(args)))
	}
	if filter.StartDateFrom != nil {
		args = append(args, *filter.StartDateFrom)
		clauses = append(clauses, fmt.Sprintf("tr.start_date >= $%d", len(args)))
	}
	if filter.StartDateTo != nil {
		args = append(args, *filter.StartDateTo)
		clauses = append(clauses, fmt.Sprintf("tr.start_date <= $%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("tr.created_at::date >= $%d::date", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("tr.created_at::date <= $%d::date", len(args)))
	}

	return clauses, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTravelRequest(row rowScanner) (*domain.TravelRequest, error) {
	var (
		request                  domain.TravelRequest
		ownerID, ownerName       string
		ownerEmail               string
		apprID, apprName, apprEm *string
		cancID, cancName, cancEm *string
	)
	if err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.RequesterName,
		&request.Destination,
		&request.StartDate,
		&request.EndDate,
		&request.Status,
		&request.Notes,
		&request.ApprovedBy,
		&request.CancelledBy,
		&request.CancelledReason,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.DeletedAt,
		&ownerID, &ownerName, &ownerEmail,
		&apprID, &apprName, &apprEm,
		&cancID, &cancName, &cancEm,
	); err != nil {
		return nil, err
	}

	request.Owner = &domain.UserSummary{ID: ownerID, Name: ownerName, Email: ownerEmail}
	if apprID != nil {
		request.Approver = &domain.UserSummary{ID: *apprID, Name: deref(apprName), Email: deref(apprEm)}
	}
	if cancID != nil {
		request.Canceller = &domain.UserSummary{ID: *cancID, Name: deref(cancName), Email: deref(cancEm)}
	}
	return &request, nil
}

func scanTravelRequests(rows pgx.Rows) ([]domain.TravelRequest, error) {
	var result []domain.TravelRequest
	for rows.Next() {
		request, err := scanTravelRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	return result, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
