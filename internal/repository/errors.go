// Package repository implements the engine's store interfaces on
// Postgres using sqlx.  Storage-specific error codes are translated
// here, once and centrally, into the engine's error vocabulary; no
// caller above this package inspects raw pq codes.
package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/venuecore/booking-engine/internal/engine"
)

// Postgres error codes relevant to the booking write path.
const (
	pqExclusionViolation = "23P01" // exclusion constraint rejected the write
	pqUniqueViolation    = "23505" // unique constraint rejected the write
)

// Constraint names from scripts/schema.sql.  The unique-violation code
// alone is ambiguous; the constraint name decides which domain error
// applies.
const (
	constraintNoOverlap      = "bookings_no_overlap"
	constraintBookingNumber  = "bookings_tenant_number_key"
	constraintIdempotencyKey = "idempotency_keys_pkey"
)

// mapError translates a storage error into the engine vocabulary.  Any
// error it does not recognize passes through unchanged and is treated
// as a retryable infrastructure failure upstream.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return engine.ErrNotFound
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pqExclusionViolation:
		if pqErr.Constraint == constraintNoOverlap {
			return engine.ErrIntervalConflict
		}
	case pqUniqueViolation:
		switch pqErr.Constraint {
		case constraintBookingNumber:
			return engine.ErrDuplicateNumber
		case constraintIdempotencyKey:
			return engine.ErrIdempotencyReplay
		}
	}
	return err
}
