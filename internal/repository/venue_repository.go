package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/venuecore/booking-engine/internal/model"
)

// VenueRepo reads the venue catalog.  The catalog is written by an
// external system; the engine only needs capacity and minimum-duration
// lookups at booking time.
type VenueRepo struct {
	db *sqlx.DB
}

// NewVenueRepo returns a VenueRepo bound to the given database.
func NewVenueRepo(db *sqlx.DB) *VenueRepo { return &VenueRepo{db: db} }

// GetByID loads a venue scoped to its tenant.  Absent rows yield
// engine.ErrNotFound.
func (r *VenueRepo) GetByID(ctx context.Context, tenant, id uuid.UUID) (*model.Venue, error) {
	const q = `SELECT id, tenant_id, name, capacity, min_booking_minutes, created_at
		FROM venues WHERE tenant_id = $1 AND id = $2`
	var v model.Venue
	if err := r.db.GetContext(ctx, &v, q, tenant, id); err != nil {
		return nil, mapError(err)
	}
	return &v, nil
}
