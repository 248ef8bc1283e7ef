package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/venuecore/booking-engine/internal/model"
)

const timeFormat = time.RFC3339

// CreateBookingInput is the request to reserve a venue interval.  The
// customer reference, pricing and payment state arrive already resolved
// by upstream collaborators.
type CreateBookingInput struct {
	TenantID       uuid.UUID      `json:"tenant_id"`
	VenueID        uuid.UUID      `json:"venue_id"`
	Interval       model.Interval `json:"interval"`
	CustomerRef    string         `json:"customer_ref"`
	GuestCount     int            `json:"guest_count"`
	EventType      string         `json:"event_type,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
}

// CreateBooking reserves the requested interval as a temp_hold:
//
//	idempotency lookup → validation → sequence assignment →
//	atomic reservation write → post-commit effects.
//
// The write relies on the store's exclusion guarantee, never on a prior
// availability read; of N concurrent overlapping attempts exactly one
// survives the insert and the rest receive a ConflictError carrying
// alternative slots.  A supplied idempotency key makes retries safe:
// the same tenant+key always returns the original booking, consuming no
// new row and no sequence number.
func (e *Engine) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	if in.IdempotencyKey != "" {
		stored, err := e.idempotency.Get(ctx, in.TenantID, in.IdempotencyKey)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, &InfrastructureError{Op: "idempotency lookup", Err: err}
		}
	}

	if err := e.validateBookingRequest(ctx, &in); err != nil {
		return nil, err
	}

	// One retry on a duplicate booking number: the unique index is the
	// final guard, and a collision means the counter fed us a stale
	// value.  The retry skips the fast path and regenerates from the
	// durable maximum.
	for attempt := 0; ; attempt++ {
		number, err := e.nextBookingNumber(ctx, in.TenantID, attempt > 0)
		if err != nil {
			return nil, err
		}

		now := e.now()
		holdExpiry := now.Add(e.cfg.HoldDuration)
		key := nullableKey(in.IdempotencyKey)
		b := &model.Booking{
			ID:             uuid.New(),
			TenantID:       in.TenantID,
			VenueID:        in.VenueID,
			BookingNumber:  number,
			StartAt:        in.Interval.Start.UTC(),
			EndAt:          in.Interval.End.UTC(),
			Status:         model.StatusTempHold,
			PaymentStatus:  model.PaymentUnpaid,
			HoldExpiresAt:  &holdExpiry,
			IdempotencyKey: key,
			CustomerRef:    in.CustomerRef,
			GuestCount:     in.GuestCount,
			EventType:      in.EventType,
			Notes:          in.Notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err = e.bookings.Insert(ctx, b)
		switch {
		case err == nil:
			e.runPostCreateEffects(ctx, b)
			return b, nil

		case errors.Is(err, ErrIntervalConflict):
			// A concurrent retry carrying the same key loses on the
			// interval before the key mapping is ever written.  If the
			// winner bound this key, answer with its booking instead of
			// a conflict.
			if in.IdempotencyKey != "" {
				if stored, gerr := e.idempotency.Get(ctx, in.TenantID, in.IdempotencyKey); gerr == nil {
					return stored, nil
				}
			}
			return nil, e.overlapConflict(ctx, in)

		case errors.Is(err, ErrBlackoutConflict):
			return nil, e.blackoutConflict(ctx, in)

		case errors.Is(err, ErrIdempotencyReplay):
			stored, gerr := e.idempotency.Get(ctx, in.TenantID, in.IdempotencyKey)
			if gerr != nil {
				return nil, &InfrastructureError{Op: "idempotency re-read", Err: gerr}
			}
			return stored, nil

		case errors.Is(err, ErrDuplicateNumber) && attempt == 0:
			log.Printf("engine: booking number %s already taken for tenant %s, regenerating", number, in.TenantID)
			continue

		case errors.Is(err, ErrDuplicateNumber):
			return nil, &ConflictError{Code: ConflictCodeDuplicate, Message: "booking number collision persisted across retry"}

		default:
			return nil, &InfrastructureError{Op: "insert booking", Err: err}
		}
	}
}

// overlapConflict builds the ConflictError for an exclusion violation,
// reading the winning rows back so the caller gets both the conflicts
// and usable alternatives.
func (e *Engine) overlapConflict(ctx context.Context, in CreateBookingInput) error {
	ce := &ConflictError{Code: ConflictCodeOverlap, Message: "requested interval overlaps an existing booking"}
	conflicts, err := e.bookings.ListOverlapping(ctx, in.TenantID, in.VenueID, in.Interval, nil)
	if err != nil {
		log.Printf("engine: conflict read-back failed for venue %s: %v", in.VenueID, err)
		return ce
	}
	blackouts, err := e.blackouts.ListOverlapping(ctx, in.TenantID, in.VenueID, in.Interval)
	if err != nil {
		blackouts = nil
	}
	ce.Alternatives = e.suggestAlternatives(in.Interval.UTC(), conflictIntervals(conflicts, blackouts))
	return ce
}

// blackoutConflict builds the ConflictError for a blackout overlap.
func (e *Engine) blackoutConflict(ctx context.Context, in CreateBookingInput) error {
	ce := &ConflictError{Code: ConflictCodeBlackout, Message: "requested interval falls inside a blackout period"}
	blackouts, err := e.blackouts.ListOverlapping(ctx, in.TenantID, in.VenueID, in.Interval)
	if err != nil {
		return ce
	}
	conflicts, err := e.bookings.ListOverlapping(ctx, in.TenantID, in.VenueID, in.Interval, nil)
	if err != nil {
		conflicts = nil
	}
	ce.Alternatives = e.suggestAlternatives(in.Interval.UTC(), conflictIntervals(conflicts, blackouts))
	return ce
}

// runPostCreateEffects mirrors the post-commit effects of a transition
// for the creation write: cached availability for the venue is stale
// and downstream consumers learn about the new hold.
func (e *Engine) runPostCreateEffects(ctx context.Context, b *model.Booking) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, b.TenantID, b.VenueID)
	}
	if e.publisher == nil {
		return
	}
	ev := BookingEvent{
		Type:          "booking.held",
		TenantID:      b.TenantID,
		BookingID:     b.ID,
		VenueID:       b.VenueID,
		BookingNumber: b.BookingNumber,
		ToStatus:      string(b.Status),
		StartAt:       b.StartAt.Format(timeFormat),
		EndAt:         b.EndAt.Format(timeFormat),
		OccurredAt:    e.now().Format(timeFormat),
	}
	if err := e.publisher.PublishBookingEvent(ctx, ev); err != nil {
		log.Printf("engine: publish booking.held for %s failed: %v", b.ID, err)
	}
}

// nullableKey converts an optional idempotency key to its storage form.
func nullableKey(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}
