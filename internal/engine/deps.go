package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/venuecore/booking-engine/internal/model"
)

// BookingStore is the durable home of bookings.  Implementations must
// provide the storage-enforced exclusion guarantee: Insert rejects a
// booking whose interval overlaps an active row for the same
// tenant+venue atomically, returning ErrIntervalConflict.  The
// application-level overlap check in the allocator is advisory only and
// is never the gate against a concurrent writer.
type BookingStore interface {
	// Insert writes the booking in a single transaction.  Within that
	// transaction it must re-check blackout periods (ErrBlackoutConflict)
	// and, when b.IdempotencyKey is set, record the tenant+key mapping
	// write-once (ErrIdempotencyReplay when the key is already bound).
	// A taken booking number yields ErrDuplicateNumber.
	Insert(ctx context.Context, b *model.Booking) error

	// GetByID loads a booking scoped to its tenant.  Absent rows yield
	// ErrNotFound.
	GetByID(ctx context.Context, tenant, id uuid.UUID) (*model.Booking, error)

	// ListOverlapping returns active bookings whose intervals overlap
	// iv for the given tenant+venue, ordered by start time.  When
	// exclude is non-nil that booking is omitted (used when moving an
	// existing booking).
	ListOverlapping(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval, exclude *uuid.UUID) ([]model.Booking, error)

	// UpdateStatus commits a transition: it writes b's status and the
	// status-specific fields (hold_expires_at, confirmed_by/at,
	// payment_status, updated_at) guarded by WHERE status = from, so a
	// race with another transition loses cleanly.  When no row matched,
	// ErrNotFound is returned and no write occurred.
	UpdateStatus(ctx context.Context, b *model.Booking, from model.Status) error

	// ListExpiredHolds returns up to limit temp_hold bookings whose
	// hold_expires_at is at or before now.  A nil tenant means all
	// tenants.
	ListExpiredHolds(ctx context.Context, tenant *uuid.UUID, now time.Time, limit int) ([]model.Booking, error)

	// ListFinishedConfirmed returns up to limit confirmed bookings
	// whose interval end is at or before now.  A nil tenant means all
	// tenants.
	ListFinishedConfirmed(ctx context.Context, tenant *uuid.UUID, now time.Time, limit int) ([]model.Booking, error)

	// ListByTenant returns the tenant's bookings newest first.
	ListByTenant(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]model.Booking, error)

	// MaxSequence returns the highest NNNN suffix among booking numbers
	// matching prefix-year-* for the tenant, or 0 when none exist.  It
	// must read inside a transaction that serializes concurrent
	// fallback scans for the same tenant+year.
	MaxSequence(ctx context.Context, tenant uuid.UUID, prefix string, year int) (int, error)
}

// BlackoutStore persists venue blackout periods.
type BlackoutStore interface {
	Insert(ctx context.Context, b *model.BlackoutPeriod) error
	// Delete removes the blackout and returns the deleted row so the
	// caller can invalidate the venue's cached availability.
	Delete(ctx context.Context, tenant, id uuid.UUID) (*model.BlackoutPeriod, error)
	ListByVenue(ctx context.Context, tenant, venue uuid.UUID) ([]model.BlackoutPeriod, error)
	// ListOverlapping returns blackouts overlapping iv for tenant+venue,
	// ordered by start time.
	ListOverlapping(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval) ([]model.BlackoutPeriod, error)
}

// VenueStore reads the venue catalog.  The catalog is owned by an
// external collaborator; the engine only validates against it.
type VenueStore interface {
	GetByID(ctx context.Context, tenant, id uuid.UUID) (*model.Venue, error)
}

// IdempotencyStore resolves a previously used creation key to the
// booking it produced.  The mapping is written by BookingStore.Insert
// inside the creation transaction; this interface only reads it back.
type IdempotencyStore interface {
	// Get returns the booking bound to tenant+key, or ErrNotFound.
	Get(ctx context.Context, tenant uuid.UUID, key string) (*model.Booking, error)
}

// Counter is the ephemeral fast path for sequence numbers: an atomic
// increment keyed by tenant+year with an expiry aligned to year end.
// It is never authoritative; any error sends the generator to the
// durable fallback.
type Counter interface {
	// Incr atomically increments the counter and returns the new value.
	// On the counter's first increment implementations must attach
	// expireAt.
	Incr(ctx context.Context, tenant uuid.UUID, year int, expireAt time.Time) (int64, error)

	// Resync raises the counter to at least floor.  It must never lower
	// an existing value.
	Resync(ctx context.Context, tenant uuid.UUID, year int, floor int64) error
}

// AvailabilityCache caches availability reports per tenant+venue and
// supports venue-scoped invalidation.  A nil-safe no-op implementation
// is acceptable; the engine degrades to querying the store directly.
type AvailabilityCache interface {
	Get(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval) (*AvailabilityReport, bool)
	Set(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval, report *AvailabilityReport)
	// Invalidate drops every cached report for the venue.
	Invalidate(ctx context.Context, tenant, venue uuid.UUID)
}

// EventPublisher delivers post-commit lifecycle events to downstream
// consumers.  Publish failures are logged by the engine and never roll
// back the state change that produced them.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, ev BookingEvent) error
}

// BookingEvent is the payload handed to the EventPublisher after a
// creation or transition commits.
type BookingEvent struct {
	Type          string    `json:"type"` // "booking.held", "booking.confirmed", ...
	TenantID      uuid.UUID `json:"tenant_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	VenueID       uuid.UUID `json:"venue_id"`
	BookingNumber string    `json:"booking_number"`
	FromStatus    string    `json:"from_status,omitempty"`
	ToStatus      string    `json:"to_status"`
	StartAt       string    `json:"start_at"`
	EndAt         string    `json:"end_at"`
	OccurredAt    string    `json:"occurred_at"`
}
