package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/venuecore/booking-engine/internal/model"
)

// GetBooking loads a single booking scoped to its tenant.
func (e *Engine) GetBooking(ctx context.Context, tenant, id uuid.UUID) (*model.Booking, error) {
	b, err := e.bookings.GetByID(ctx, tenant, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Kind: "booking", ID: id.String()}
		}
		return nil, &InfrastructureError{Op: "load booking", Err: err}
	}
	return b, nil
}

// ListBookings returns the tenant's bookings newest first.
func (e *Engine) ListBookings(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]model.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	out, err := e.bookings.ListByTenant(ctx, tenant, limit, offset)
	if err != nil {
		return nil, &InfrastructureError{Op: "list bookings", Err: err}
	}
	return out, nil
}

// AddBlackout records a venue unavailability window.  The interval is
// validated like a booking interval and the venue must exist; cached
// availability for the venue is invalidated once the row commits.
func (e *Engine) AddBlackout(ctx context.Context, b *model.BlackoutPeriod) error {
	iv := b.Interval()
	if err := iv.Validate(); err != nil {
		return &ValidationError{Field: "interval", Reason: err.Error()}
	}
	if _, err := e.venues.GetByID(ctx, b.TenantID, b.VenueID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: "venue", ID: b.VenueID.String()}
		}
		return &InfrastructureError{Op: "load venue", Err: err}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.StartAt = b.StartAt.UTC()
	b.EndAt = b.EndAt.UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = e.now()
	}
	if err := e.blackouts.Insert(ctx, b); err != nil {
		return &InfrastructureError{Op: "insert blackout", Err: err}
	}
	if e.cache != nil {
		e.cache.Invalidate(ctx, b.TenantID, b.VenueID)
	}
	return nil
}

// RemoveBlackout deletes a blackout window and invalidates the venue's
// cached availability.
func (e *Engine) RemoveBlackout(ctx context.Context, tenant, id uuid.UUID) error {
	deleted, err := e.blackouts.Delete(ctx, tenant, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: "blackout", ID: id.String()}
		}
		return &InfrastructureError{Op: "delete blackout", Err: err}
	}
	if e.cache != nil {
		e.cache.Invalidate(ctx, tenant, deleted.VenueID)
	}
	return nil
}

// ListBlackouts returns all blackout windows for a venue.
func (e *Engine) ListBlackouts(ctx context.Context, tenant, venue uuid.UUID) ([]model.BlackoutPeriod, error) {
	out, err := e.blackouts.ListByVenue(ctx, tenant, venue)
	if err != nil {
		return nil, &InfrastructureError{Op: "list blackouts", Err: err}
	}
	return out, nil
}
