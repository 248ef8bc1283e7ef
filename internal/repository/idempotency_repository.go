package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/venuecore/booking-engine/internal/model"
)

// IdempotencyRepo resolves previously used creation keys.  The mapping
// itself is written inside the booking insert transaction (see
// BookingRepo.Insert) so a key can never point at a booking that was
// rolled back; this repo only reads it.
type IdempotencyRepo struct {
	db *sqlx.DB
}

// NewIdempotencyRepo returns an IdempotencyRepo bound to the database.
func NewIdempotencyRepo(db *sqlx.DB) *IdempotencyRepo { return &IdempotencyRepo{db: db} }

// Get returns the booking bound to tenant+key.  Absent mappings yield
// engine.ErrNotFound.
func (r *IdempotencyRepo) Get(ctx context.Context, tenant uuid.UUID, key string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
		WHERE id = (SELECT booking_id FROM idempotency_keys WHERE tenant_id = $1 AND idem_key = $2)`
	var b model.Booking
	if err := r.db.GetContext(ctx, &b, q, tenant, key); err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}
