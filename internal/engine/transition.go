package engine

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/venuecore/booking-engine/internal/model"
)

// Transition applies event to the booking through the guarded state
// machine:
//
//  1. load the booking; absence is a NotFoundError, the only error this
//     method produces for business reasons;
//  2. look up the rule for (currentStatus, event); no rule is a failure
//     result "invalid transition";
//  3. re-check the rule's target against the allowed adjacency set,
//     guarding against rule-table drift;
//  4. evaluate the rule's guard against the context;
//  5. commit the new status and status-specific fields atomically,
//     conditioned on the status still being what was loaded, then run
//     the post-commit effects.
//
// Because every transition — user-triggered or batch — passes through
// this path, concurrent attempts race safely: the first commit wins and
// the loser observes "invalid transition" on its re-read, never a
// corrupted row.
func (e *Engine) Transition(ctx context.Context, tenant, bookingID uuid.UUID, event model.Event, tc TransitionContext) (*TransitionResult, error) {
	b, err := e.bookings.GetByID(ctx, tenant, bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Kind: "booking", ID: bookingID.String()}
		}
		return nil, &InfrastructureError{Op: "load booking", Err: err}
	}

	from := b.Status
	rules, ok := transitionRules[from]
	if !ok {
		return &TransitionResult{Success: false, From: from, Reason: reasonInvalidTransition}, nil
	}
	rule, ok := rules[event]
	if !ok {
		return &TransitionResult{Success: false, From: from, Reason: reasonInvalidTransition}, nil
	}

	if !adjacencyAllows(from, rule.To) {
		return &TransitionResult{Success: false, From: from, To: rule.To, Reason: reasonNotAllowed}, nil
	}

	now := e.now()
	if rule.Guard != nil {
		if ok, detail := rule.Guard(e, b, tc, now); !ok {
			reason := reasonConditionNotMet
			if detail != "" {
				reason += ": " + detail
			}
			return &TransitionResult{Success: false, From: from, To: rule.To, Reason: reason}, nil
		}
	}

	b.Status = rule.To
	if from == model.StatusTempHold {
		b.HoldExpiresAt = nil
	}
	if rule.Apply != nil {
		rule.Apply(b, tc, now)
	}
	b.UpdatedAt = now

	if err := e.bookings.UpdateStatus(ctx, b, from); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost a race: another transition moved the booking first.
			return &TransitionResult{Success: false, From: from, To: rule.To, Reason: reasonInvalidTransition}, nil
		}
		return &TransitionResult{
			Success: false,
			From:    from,
			To:      rule.To,
			Reason:  "commit failed: " + err.Error(),
		}, nil
	}

	e.runPostCommitEffects(ctx, b, from)

	return &TransitionResult{Success: true, From: from, To: b.Status, Booking: b}, nil
}

// runPostCommitEffects performs the side effects attached to a
// committed state change: invalidating the venue's cached availability
// and publishing the lifecycle event.  Effect failures are logged and
// never roll back the state change that produced them.
func (e *Engine) runPostCommitEffects(ctx context.Context, b *model.Booking, from model.Status) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, b.TenantID, b.VenueID)
	}
	if e.publisher == nil {
		return
	}
	ev := BookingEvent{
		Type:          "booking." + string(b.Status),
		TenantID:      b.TenantID,
		BookingID:     b.ID,
		VenueID:       b.VenueID,
		BookingNumber: b.BookingNumber,
		FromStatus:    string(from),
		ToStatus:      string(b.Status),
		StartAt:       b.StartAt.Format(timeFormat),
		EndAt:         b.EndAt.Format(timeFormat),
		OccurredAt:    e.now().Format(timeFormat),
	}
	if err := e.publisher.PublishBookingEvent(ctx, ev); err != nil {
		log.Printf("engine: publish %s for booking %s failed: %v", ev.Type, b.ID, err)
	}
}
