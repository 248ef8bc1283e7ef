package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/venuecore/booking-engine/internal/model"
)

const blackoutColumns = `id, tenant_id, venue_id, start_at, end_at, reason, created_at`

// BlackoutRepo provides access to the blackout_periods table.  Blackout
// windows take part in availability checks like bookings do, but they
// live outside the exclusion constraint; the booking insert re-checks
// them under row locks instead (see BookingRepo.Insert).
type BlackoutRepo struct {
	db *sqlx.DB
}

// NewBlackoutRepo returns a BlackoutRepo bound to the given database.
func NewBlackoutRepo(db *sqlx.DB) *BlackoutRepo { return &BlackoutRepo{db: db} }

// Insert writes a new blackout period.
func (r *BlackoutRepo) Insert(ctx context.Context, b *model.BlackoutPeriod) error {
	const q = `INSERT INTO blackout_periods (` + blackoutColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := r.db.ExecContext(ctx, q,
		b.ID, b.TenantID, b.VenueID, b.StartAt, b.EndAt, b.Reason, b.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert blackout: %w", mapError(err))
	}
	return nil
}

// Delete removes a blackout scoped to its tenant and returns the
// deleted row.  Absent rows yield engine.ErrNotFound.
func (r *BlackoutRepo) Delete(ctx context.Context, tenant, id uuid.UUID) (*model.BlackoutPeriod, error) {
	const q = `DELETE FROM blackout_periods WHERE tenant_id = $1 AND id = $2
		RETURNING ` + blackoutColumns
	var b model.BlackoutPeriod
	if err := r.db.GetContext(ctx, &b, q, tenant, id); err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

// ListByVenue returns all blackout windows for a venue, earliest first.
func (r *BlackoutRepo) ListByVenue(ctx context.Context, tenant, venue uuid.UUID) ([]model.BlackoutPeriod, error) {
	const q = `SELECT ` + blackoutColumns + ` FROM blackout_periods
		WHERE tenant_id = $1 AND venue_id = $2 ORDER BY start_at`
	out := []model.BlackoutPeriod{}
	if err := r.db.SelectContext(ctx, &out, q, tenant, venue); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// ListOverlapping returns blackouts overlapping the half-open interval
// for tenant+venue, ordered by start time.
func (r *BlackoutRepo) ListOverlapping(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval) ([]model.BlackoutPeriod, error) {
	const q = `SELECT ` + blackoutColumns + ` FROM blackout_periods
		WHERE tenant_id = $1 AND venue_id = $2
		  AND start_at < $4 AND end_at > $3
		ORDER BY start_at`
	out := []model.BlackoutPeriod{}
	if err := r.db.SelectContext(ctx, &out, q, tenant, venue, iv.Start, iv.End); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
