package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/venuecore/booking-engine/internal/model"
)

// AvailabilityReport is the advisory answer to "is this interval free".
// It lists the active bookings and blackouts that collide with the
// requested interval and, when the slot is taken, nearby alternatives.
// The report must never be used as the gate for a write: the storage
// exclusion constraint is the sole authority at write time.
type AvailabilityReport struct {
	Available    bool                   `json:"available"`
	Conflicts    []model.Booking        `json:"conflicts"`
	Blackouts    []model.BlackoutPeriod `json:"blackouts"`
	Alternatives []model.Interval       `json:"alternatives,omitempty"`
}

// CheckAvailability tests the requested interval against active
// bookings and blackout periods for the venue.  Malformed intervals are
// rejected before any query runs.  Results are served from the
// availability cache when present; every reservation write and blackout
// change invalidates the venue's cached reports.
func (e *Engine) CheckAvailability(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval, exclude *uuid.UUID) (*AvailabilityReport, error) {
	if err := iv.Validate(); err != nil {
		return nil, &ValidationError{Field: "interval", Reason: err.Error()}
	}
	iv = iv.UTC()

	// Cached reports are only reusable for the plain form of the check;
	// an exclusion-qualified check is always answered fresh.
	if e.cache != nil && exclude == nil {
		if report, ok := e.cache.Get(ctx, tenant, venue, iv); ok {
			return report, nil
		}
	}

	conflicts, err := e.bookings.ListOverlapping(ctx, tenant, venue, iv, exclude)
	if err != nil {
		return nil, &InfrastructureError{Op: "list overlapping bookings", Err: err}
	}
	blackouts, err := e.blackouts.ListOverlapping(ctx, tenant, venue, iv)
	if err != nil {
		return nil, &InfrastructureError{Op: "list overlapping blackouts", Err: err}
	}

	report := &AvailabilityReport{
		Available: len(conflicts) == 0 && len(blackouts) == 0,
		Conflicts: conflicts,
		Blackouts: blackouts,
	}
	if !report.Available {
		report.Alternatives = e.suggestAlternatives(iv, conflictIntervals(conflicts, blackouts))
	}

	if e.cache != nil && exclude == nil {
		e.cache.Set(ctx, tenant, venue, iv, report)
	}
	return report, nil
}

// conflictIntervals flattens bookings and blackouts into plain
// intervals for the suggestion engine.
func conflictIntervals(bookings []model.Booking, blackouts []model.BlackoutPeriod) []model.Interval {
	out := make([]model.Interval, 0, len(bookings)+len(blackouts))
	for i := range bookings {
		out = append(out, bookings[i].Interval())
	}
	for i := range blackouts {
		out = append(out, blackouts[i].Interval())
	}
	return out
}

// validateBookingRequest runs the pre-write checks of CreateBooking:
// interval shape, venue existence, guest count against capacity and
// minimum duration.
func (e *Engine) validateBookingRequest(ctx context.Context, in *CreateBookingInput) error {
	if err := in.Interval.Validate(); err != nil {
		return &ValidationError{Field: "interval", Reason: err.Error()}
	}
	if in.CustomerRef == "" {
		return &ValidationError{Field: "customer_ref", Reason: "required"}
	}
	if in.GuestCount <= 0 {
		return &ValidationError{Field: "guest_count", Reason: "must be positive"}
	}
	venue, err := e.venues.GetByID(ctx, in.TenantID, in.VenueID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: "venue", ID: in.VenueID.String()}
		}
		return &InfrastructureError{Op: "load venue", Err: err}
	}
	if venue.Capacity > 0 && in.GuestCount > venue.Capacity {
		return &ValidationError{
			Field:  "guest_count",
			Reason: fmt.Sprintf("%d exceeds venue capacity %d", in.GuestCount, venue.Capacity),
		}
	}
	if venue.MinBookingMinutes > 0 {
		if min := venue.MinBookingMinutes; int(in.Interval.Duration().Minutes()) < min {
			return &ValidationError{
				Field:  "interval",
				Reason: fmt.Sprintf("duration below venue minimum of %d minutes", min),
			}
		}
	}
	return nil
}
