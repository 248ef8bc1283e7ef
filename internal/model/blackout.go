package model

import (
	"time"

	"github.com/google/uuid"
)

// BlackoutPeriod marks a venue as unavailable for a half-open time
// interval, independent of any booking.  Typical reasons are
// maintenance windows and seasonal closures.  Blackouts participate in
// availability checks exactly like active bookings: a requested
// interval overlapping a blackout is a conflict.
//
// Fields:
//  ID        – primary key (UUID, generated app-side).
//  TenantID  – tenant owning the blackout.
//  VenueID   – venue the blackout applies to.
//  StartAt   – inclusive start, UTC.
//  EndAt     – exclusive end, UTC.
//  Reason    – operator-facing description.
//  CreatedAt – creation timestamp.
type BlackoutPeriod struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	VenueID   uuid.UUID `db:"venue_id" json:"venue_id"`
	StartAt   time.Time `db:"start_at" json:"start_at"`
	EndAt     time.Time `db:"end_at" json:"end_at"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Interval returns the blackout window as a value type.
func (b *BlackoutPeriod) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt}
}
