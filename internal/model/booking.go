package model

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates the lifecycle states of a booking.  A booking is
// created as StatusTempHold and only ever advances through the
// transition engine; the terminal states are immutable once reached.
type Status string

const (
	StatusTempHold  Status = "temp_hold" // time-limited reservation awaiting payment/confirmation
	StatusPending   Status = "pending"   // payment submitted, awaiting outcome
	StatusConfirmed Status = "confirmed" // allocation finalized
	StatusCancelled Status = "cancelled" // terminal
	StatusExpired   Status = "expired"   // terminal; hold lapsed without advancing
	StatusCompleted Status = "completed" // terminal; event took place
)

// ActiveStatuses are the statuses that occupy a venue interval.  Only
// rows in one of these states participate in overlap checks and in the
// storage exclusion constraint.
var ActiveStatuses = []Status{StatusTempHold, StatusPending, StatusConfirmed}

// IsTerminal reports whether s permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusExpired, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether a booking in status s blocks its interval.
func (s Status) IsActive() bool {
	switch s {
	case StatusTempHold, StatusPending, StatusConfirmed:
		return true
	}
	return false
}

// PaymentStatus tracks the payment leg of a booking.  Payment capture
// itself happens in an external collaborator; the engine only records
// the resolved outcome.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Event names a trigger that may move a booking between statuses.  The
// rule table in the engine decides which (status, event) pairs are
// legal.
type Event string

const (
	EventSubmitPayment  Event = "SUBMIT_PAYMENT"
	EventPaymentSuccess Event = "PAYMENT_SUCCESS"
	EventPaymentFailure Event = "PAYMENT_FAILURE"
	EventManualConfirm  Event = "MANUAL_CONFIRM"
	EventCancel         Event = "CANCEL"
	EventExpireHold     Event = "EXPIRE_HOLD"
	EventCompleteEvent  Event = "COMPLETE_EVENT"
)

// Booking records the reservation of a venue for a half-open time
// interval [StartAt, EndAt) on behalf of a customer.  Bookings are
// tenant scoped: BookingNumber is unique within a tenant and all
// overlap rules apply per tenant+venue.
//
// Fields:
//  ID             – primary key (UUID, generated app-side).
//  TenantID       – isolation boundary owning the booking.
//  VenueID        – venue whose time is being allocated.
//  BookingNumber  – human-readable sequence number, e.g. "BK-2025-0042".
//  StartAt/EndAt  – half-open interval in UTC; EndAt is exclusive.
//  Status         – lifecycle state, see Status.
//  PaymentStatus  – resolved payment outcome, see PaymentStatus.
//  HoldExpiresAt  – soft expiry; set only while Status is temp_hold.
//  IdempotencyKey – caller-supplied dedup token (nullable).
//  CustomerRef    – opaque reference to the already-resolved customer.
//  GuestCount     – attendee count, validated against venue capacity.
//  EventType      – free-form label for the occasion (wedding, meetup...).
//  Notes          – operator notes.
//  ConfirmedBy    – identity that confirmed the booking (nullable).
//  ConfirmedAt    – confirmation timestamp (nullable).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Booking struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	TenantID       uuid.UUID     `db:"tenant_id" json:"tenant_id"`
	VenueID        uuid.UUID     `db:"venue_id" json:"venue_id"`
	BookingNumber  string        `db:"booking_number" json:"booking_number"`
	StartAt        time.Time     `db:"start_at" json:"start_at"`
	EndAt          time.Time     `db:"end_at" json:"end_at"`
	Status         Status        `db:"status" json:"status"`
	PaymentStatus  PaymentStatus `db:"payment_status" json:"payment_status"`
	HoldExpiresAt  *time.Time    `db:"hold_expires_at" json:"hold_expires_at,omitempty"`
	IdempotencyKey *string       `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CustomerRef    string        `db:"customer_ref" json:"customer_ref"`
	GuestCount     int           `db:"guest_count" json:"guest_count"`
	EventType      string        `db:"event_type" json:"event_type,omitempty"`
	Notes          string        `db:"notes" json:"notes,omitempty"`
	ConfirmedBy    *string       `db:"confirmed_by" json:"confirmed_by,omitempty"`
	ConfirmedAt    *time.Time    `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// Interval returns the booked interval as a value type.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt}
}
