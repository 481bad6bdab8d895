package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/travel-approval/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strptr(s string) *string { return &s }

func statusptr(s domain.RequestStatus) *domain.RequestStatus { return &s }

func timeptr(t time.Time) *time.Time { return &t }

func TestBuildListFilterEmpty(t *testing.T) {
	clauses, args := buildListFilter(TravelRequestFilter{})

	assert.Equal(t, []string{"tr.deleted_at IS NULL"}, clauses)
	assert.Empty(t, args)
}

func TestBuildListFilterOwnerScope(t *testing.T) {
	clauses, args := buildListFilter(TravelRequestFilter{OwnerID: strptr("user-1")})

	assert.Contains(t, clauses, "tr.user_id=$1")
	assert.Equal(t, []any{"user-1"}, args)
}

func TestBuildListFilterCombined(t *testing.T) {
	filter := TravelRequestFilter{
		Status:        statusptr(domain.StatusApproved),
		StartDateFrom: timeptr(date(2026, time.March, 1)),
		StartDateTo:   timeptr(date(2026, time.March, 31)),
	}

	clauses, args := buildListFilter(filter)

	require.Len(t, clauses, 4)
	assert.Equal(t, "tr.deleted_at IS NULL", clauses[0])
	assert.Equal(t, "tr.status=$1", clauses[1])
	assert.Equal(t, "tr.start_date >= $2", clauses[2])
	assert.Equal(t, "tr.start_date <= $3", clauses[3])
	assert.Equal(t, []any{domain.StatusApproved, date(2026, time.March, 1), date(2026, time.March, 31)}, args)
}

func TestBuildListFilterDestinationSubstring(t *testing.T) {
	clauses, args := buildListFilter(TravelRequestFilter{Destination: strptr("  Lisbon ")})

	assert.Contains(t, clauses, "tr.destination ILIKE $1")
	assert.Equal(t, []any{"%Lisbon%"}, args)
}

func TestBuildListFilterBlankDestinationIsNoop(t *testing.T) {
	clauses, args := buildListFilter(TravelRequestFilter{Destination: strptr("   ")})

	assert.Equal(t, []string{"tr.deleted_at IS NULL"}, clauses)
	assert.Empty(t, args)
}

func TestBuildListFilterSingleValueAndRangeCombine(t *testing.T) {
	// start_date and start_date_from/to are independent predicates on the
	// same column; when both appear they all apply.
	filter := TravelRequestFilter{
		StartDate:     timeptr(date(2026, time.May, 1)),
		StartDateFrom: timeptr(date(2026, time.May, 10)),
		StartDateTo:   timeptr(date(2026, time.May, 20)),
		EndDate:       timeptr(date(2026, time.June, 1)),
	}

	clauses, _ := buildListFilter(filter)

	assert.Contains(t, clauses, "tr.start_date >= $1")
	assert.Contains(t, clauses, "tr.end_date <= $2")
	assert.Contains(t, clauses, "tr.start_date >= $3")
	assert.Contains(t, clauses, "tr.start_date <= $4")
}

func TestBuildListFilterCreatedRangeIsDateGranular(t *testing.T) {
	filter := TravelRequestFilter{
		CreatedFrom: timeptr(date(2026, time.January, 1)),
		CreatedTo:   timeptr(date(2026, time.January, 31)),
	}

	clauses, args := buildListFilter(filter)

	assert.Contains(t, clauses, "tr.created_at::date >= $1::date")
	assert.Contains(t, clauses, "tr.created_at::date <= $2::date")
	assert.Len(t, args, 2)
}
