package engine

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/venuecore/booking-engine/internal/model"
)

// BatchExpireHolds finds temp_hold bookings whose hold expiry has
// passed and moves each through Transition(EXPIRE_HOLD).  Hold expiry
// is soft: nothing else in the system enforces it, so a hold may
// outlive its nominal expiry until the sweeper's next tick.  Individual
// failures are tolerated and logged; the returned count is the number
// of holds actually expired.  A nil tenant sweeps all tenants.
func (e *Engine) BatchExpireHolds(ctx context.Context, tenant *uuid.UUID, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	holds, err := e.bookings.ListExpiredHolds(ctx, tenant, e.now(), limit)
	if err != nil {
		return 0, &InfrastructureError{Op: "list expired holds", Err: err}
	}
	expired := 0
	for i := range holds {
		b := &holds[i]
		res, err := e.Transition(ctx, b.TenantID, b.ID, model.EventExpireHold, TransitionContext{Actor: "sweeper"})
		if err != nil {
			log.Printf("batch: expire hold %s failed: %v", b.ID, err)
			continue
		}
		if !res.Success {
			// Racing a user transition is normal; the row moved on.
			log.Printf("batch: expire hold %s skipped: %s", b.ID, res.Reason)
			continue
		}
		expired++
	}
	return expired, nil
}

// BatchCompleteBookings finds confirmed bookings whose interval has
// ended and moves each through Transition(COMPLETE_EVENT), with the
// same per-row fault tolerance as BatchExpireHolds.  The returned count
// is the number of bookings completed.  A nil tenant sweeps all
// tenants.
func (e *Engine) BatchCompleteBookings(ctx context.Context, tenant *uuid.UUID, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	finished, err := e.bookings.ListFinishedConfirmed(ctx, tenant, e.now(), limit)
	if err != nil {
		return 0, &InfrastructureError{Op: "list finished bookings", Err: err}
	}
	completed := 0
	for i := range finished {
		b := &finished[i]
		res, err := e.Transition(ctx, b.TenantID, b.ID, model.EventCompleteEvent, TransitionContext{Actor: "sweeper"})
		if err != nil {
			log.Printf("batch: complete booking %s failed: %v", b.ID, err)
			continue
		}
		if !res.Success {
			log.Printf("batch: complete booking %s skipped: %s", b.ID, res.Reason)
			continue
		}
		completed++
	}
	return completed, nil
}
