package engine

import (
	"time"

	"github.com/venuecore/booking-engine/internal/model"
)

// TransitionContext carries the request-scoped inputs a transition may
// need: who triggered it and any status-specific data.  Guards evaluate
// against it; rules never reach outside of it and the booking itself.
type TransitionContext struct {
	Actor       string `json:"actor,omitempty"`        // identity triggering the event
	ConfirmedBy string `json:"confirmed_by,omitempty"` // required by MANUAL_CONFIRM
	Reason      string `json:"reason,omitempty"`       // free-form, recorded in notes on cancel
	PaymentRef  string `json:"payment_ref,omitempty"`  // external payment reference, if any
}

// TransitionResult reports the outcome of a Transition call.  A
// rejected transition is a result, not an error: Success is false and
// Reason holds a human-readable explanation, which lets callers poll
// "what can I do next" without exception-driven control flow.  Only a
// missing booking surfaces as an error.
type TransitionResult struct {
	Success bool           `json:"success"`
	From    model.Status   `json:"from_status"`
	To      model.Status   `json:"to_status,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Booking *model.Booking `json:"booking,omitempty"`
}

// Rejection reasons returned in TransitionResult.Reason.
const (
	reasonInvalidTransition = "invalid transition"
	reasonNotAllowed        = "transition not allowed"
	reasonConditionNotMet   = "condition not met"
)

// guardFunc decides whether a rule may fire.  It returns false plus a
// detail string appended to the "condition not met" reason.
type guardFunc func(e *Engine, b *model.Booking, tc TransitionContext, now time.Time) (bool, string)

// applyFunc mutates the booking's status-specific fields before the
// commit.  Clearing hold_expires_at on leaving temp_hold is done
// centrally in Transition, not per rule.
type applyFunc func(b *model.Booking, tc TransitionContext, now time.Time)

// transitionRule binds (fromStatus, event) to a target status with an
// optional guard and field mutation.  Post-commit effects (cache
// invalidation, event publishing) are uniform and run in Transition
// after the write commits.
type transitionRule struct {
	To    model.Status
	Guard guardFunc
	Apply applyFunc
}

// transitionRules is the state machine as data: a pure lookup keyed by
// (status, event).  Any pair absent from the table is an invalid
// transition.  Terminal statuses have no entries at all.
var transitionRules = map[model.Status]map[model.Event]transitionRule{
	model.StatusTempHold: {
		model.EventSubmitPayment: {
			To:    model.StatusPending,
			Apply: applyPaymentRef,
		},
		model.EventManualConfirm: {
			To:    model.StatusConfirmed,
			Guard: guardConfirmer,
			Apply: applyManualConfirm,
		},
		model.EventCancel: {
			To:    model.StatusCancelled,
			Apply: applyCancelReason,
		},
		model.EventExpireHold: {
			To:    model.StatusExpired,
			Guard: guardHoldLapsed,
		},
	},
	model.StatusPending: {
		model.EventPaymentSuccess: {
			To:    model.StatusConfirmed,
			Apply: applyPaymentSuccess,
		},
		model.EventPaymentFailure: {
			To:    model.StatusCancelled,
			Apply: applyCancelReason,
		},
		model.EventManualConfirm: {
			To:    model.StatusConfirmed,
			Guard: guardConfirmer,
			Apply: applyManualConfirm,
		},
		model.EventCancel: {
			To:    model.StatusCancelled,
			Apply: applyCancelReason,
		},
	},
	model.StatusConfirmed: {
		model.EventCancel: {
			To:    model.StatusCancelled,
			Apply: applyCancelReason,
		},
		model.EventCompleteEvent: {
			To:    model.StatusCompleted,
			Guard: guardIntervalEnded,
		},
	},
}

// allowedNext is the adjacency set per status, maintained separately
// from the rule table.  Transition re-checks a rule's target against it
// so that drift in the table (a rule pointing somewhere it should not)
// is caught as "transition not allowed" instead of silently committed.
var allowedNext = map[model.Status][]model.Status{
	model.StatusTempHold:  {model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusExpired},
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCancelled, model.StatusCompleted},
	model.StatusCancelled: {},
	model.StatusExpired:   {},
	model.StatusCompleted: {},
}

// adjacencyAllows reports whether to is a permitted successor of from.
func adjacencyAllows(from, to model.Status) bool {
	for _, s := range allowedNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

func guardConfirmer(_ *Engine, _ *model.Booking, tc TransitionContext, _ time.Time) (bool, string) {
	if tc.ConfirmedBy == "" {
		return false, "manual confirmation requires a confirmer identity"
	}
	return true, ""
}

func guardHoldLapsed(_ *Engine, b *model.Booking, _ TransitionContext, now time.Time) (bool, string) {
	if b.HoldExpiresAt == nil {
		return false, "booking has no hold expiry"
	}
	if now.Before(*b.HoldExpiresAt) {
		return false, "hold has not expired yet"
	}
	return true, ""
}

func guardIntervalEnded(_ *Engine, b *model.Booking, _ TransitionContext, now time.Time) (bool, string) {
	if now.Before(b.EndAt) {
		return false, "event has not ended yet"
	}
	return true, ""
}

func applyManualConfirm(b *model.Booking, tc TransitionContext, now time.Time) {
	confirmer := tc.ConfirmedBy
	b.ConfirmedBy = &confirmer
	t := now
	b.ConfirmedAt = &t
}

func applyPaymentSuccess(b *model.Booking, tc TransitionContext, now time.Time) {
	b.PaymentStatus = model.PaymentPaid
	if tc.PaymentRef != "" && b.Notes == "" {
		b.Notes = "payment ref: " + tc.PaymentRef
	}
	t := now
	b.ConfirmedAt = &t
}

func applyPaymentRef(b *model.Booking, tc TransitionContext, _ time.Time) {
	if tc.PaymentRef != "" && b.Notes == "" {
		b.Notes = "payment ref: " + tc.PaymentRef
	}
}

func applyCancelReason(b *model.Booking, tc TransitionContext, _ time.Time) {
	if tc.Reason != "" {
		b.Notes = tc.Reason
	}
}
