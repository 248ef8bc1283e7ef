// Package engine implements the booking concurrency and lifecycle core:
// advisory availability checks, atomic reservation writes, sequence
// number generation, the status state machine and the batch sweep jobs.
// The engine owns no storage itself; it talks to the durable store, the
// ephemeral store and the event bus through the interfaces in deps.go so
// that the same code serves HTTP handlers, background sweepers and unit
// tests alike.
package engine

import (
	"errors"
	"fmt"

	"github.com/venuecore/booking-engine/internal/model"
)

// Conflict codes carried by ConflictError.  Callers branch on the code,
// never on raw storage errors.
const (
	ConflictCodeOverlap   = "INTERVAL_OVERLAP"  // interval overlaps an active booking
	ConflictCodeBlackout  = "BLACKOUT_OVERLAP"  // interval overlaps a blackout period
	ConflictCodeDuplicate = "DUPLICATE_NUMBER"  // booking number already taken
)

// ValidationError rejects a request before any write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// ConflictError is a terminal business conflict: the requested interval
// cannot be allocated as asked.  It is not retryable as-is; for overlap
// conflicts Alternatives carries nearby free slots the caller can offer
// instead of a bare rejection.
type ConflictError struct {
	Code         string
	Message      string
	Alternatives []model.Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict %s: %s", e.Code, e.Message)
}

// NotFoundError reports an absent booking, venue or idempotency record.
type NotFoundError struct {
	Kind string // "booking", "venue", "blackout"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InfrastructureError wraps a store or broker failure.  Unlike a
// ConflictError it is retryable: the same request may succeed once the
// underlying system recovers.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infrastructure: %s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// ErrNotFound is the sentinel store implementations return when a row
// is absent.  The engine converts it into a NotFoundError naming the
// missing entity.
var ErrNotFound = errors.New("not found")

// ErrIntervalConflict is returned by BookingStore.Insert when the
// storage exclusion constraint rejects an overlapping write.
var ErrIntervalConflict = errors.New("interval conflict")

// ErrBlackoutConflict is returned by BookingStore.Insert when the
// requested interval overlaps a blackout period.
var ErrBlackoutConflict = errors.New("blackout conflict")

// ErrDuplicateNumber is returned by BookingStore.Insert when the
// generated booking number is already taken for the tenant.  The
// orchestrator retries sequence generation once before giving up.
var ErrDuplicateNumber = errors.New("duplicate booking number")

// ErrIdempotencyReplay is returned by BookingStore.Insert when the
// idempotency mapping already exists: a concurrent request with the
// same key won the race.  The orchestrator re-reads the mapping and
// returns the stored result.
var ErrIdempotencyReplay = errors.New("idempotency key already used")

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsInfrastructure reports whether err is (or wraps) an
// InfrastructureError.
func IsInfrastructure(err error) bool {
	var ie *InfrastructureError
	return errors.As(err, &ie)
}
