package model

import (
	"time"

	"github.com/google/uuid"
)

// Venue is the bookable resource.  The catalog itself (creation,
// pricing, media) is managed by an external collaborator; the engine
// reads venues only to validate capacity and minimum duration at
// booking time.
//
// Fields:
//  ID                – primary key (UUID).
//  TenantID          – tenant owning the venue.
//  Name              – display name.
//  Capacity          – maximum guest count accepted per booking.
//  MinBookingMinutes – shortest bookable interval in minutes.
//  CreatedAt         – creation timestamp.
type Venue struct {
	ID                uuid.UUID `db:"id" json:"id"`
	TenantID          uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name              string    `db:"name" json:"name"`
	Capacity          int       `db:"capacity" json:"capacity"`
	MinBookingMinutes int       `db:"min_booking_minutes" json:"min_booking_minutes"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
