package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/venuecore/booking-engine/internal/engine"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{
			name: "nil passes through",
			in:   nil,
			want: nil,
		},
		{
			name: "no rows becomes not found",
			in:   sql.ErrNoRows,
			want: engine.ErrNotFound,
		},
		{
			name: "wrapped no rows becomes not found",
			in:   fmt.Errorf("select booking: %w", sql.ErrNoRows),
			want: engine.ErrNotFound,
		},
		{
			name: "exclusion violation becomes interval conflict",
			in:   &pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"},
			want: engine.ErrIntervalConflict,
		},
		{
			name: "unique violation on booking number",
			in:   &pq.Error{Code: "23505", Constraint: "bookings_tenant_number_key"},
			want: engine.ErrDuplicateNumber,
		},
		{
			name: "unique violation on idempotency key",
			in:   &pq.Error{Code: "23505", Constraint: "idempotency_keys_pkey"},
			want: engine.ErrIdempotencyReplay,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.in)
			if !errors.Is(got, tc.want) {
				t.Errorf("mapError(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestMapErrorUnknownPassesThrough(t *testing.T) {
	plain := errors.New("connection reset")
	if got := mapError(plain); got != plain {
		t.Errorf("mapError(plain) = %v, want the original error", got)
	}

	// Unique violation on a constraint this package does not own.
	other := &pq.Error{Code: "23505", Constraint: "some_other_key"}
	if got := mapError(other); got != error(other) {
		t.Errorf("mapError(unknown constraint) = %v, want the original pq error", got)
	}

	// Same for an exclusion violation outside the bookings schema.
	excl := &pq.Error{Code: "23P01", Constraint: "some_other_excl"}
	if got := mapError(excl); got != error(excl) {
		t.Errorf("mapError(unknown exclusion) = %v, want the original pq error", got)
	}
}
