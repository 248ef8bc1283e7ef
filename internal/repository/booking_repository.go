package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/venuecore/booking-engine/internal/engine"
	"github.com/venuecore/booking-engine/internal/model"
)

// bookingColumns is the canonical column list scanned into
// model.Booking.  Keep it in sync with scripts/schema.sql.
const bookingColumns = `id, tenant_id, venue_id, booking_number, start_at, end_at,
	status, payment_status, hold_expires_at, idempotency_key, customer_ref,
	guest_count, event_type, notes, confirmed_by, confirmed_at, created_at, updated_at`

// BookingRepo provides access to the bookings table.  It carries the
// storage side of the engine's concurrency model: the
// bookings_no_overlap exclusion constraint is the sole authority over
// interval conflicts, and every error leaving this type has already
// been translated by mapError.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

// Insert writes a new booking in a single transaction.  Inside the
// transaction it locks and re-checks overlapping blackout periods (the
// exclusion constraint only spans the bookings table) and, when an
// idempotency key is present, records the tenant+key mapping
// write-once.  An overlap with an active booking is rejected by the
// exclusion constraint and surfaces as engine.ErrIntervalConflict; a
// bound idempotency key surfaces as engine.ErrIdempotencyReplay; a
// taken booking number as engine.ErrDuplicateNumber.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Blackouts are checked under FOR SHARE so a concurrent blackout
	// insert for the same window serializes against this write.
	var blocked bool
	const blackoutQ = `SELECT EXISTS (
		SELECT 1 FROM blackout_periods
		WHERE tenant_id = $1 AND venue_id = $2
		  AND start_at < $4 AND end_at > $3
		FOR SHARE
	)`
	if err := tx.QueryRowxContext(ctx, blackoutQ, b.TenantID, b.VenueID, b.StartAt, b.EndAt).Scan(&blocked); err != nil {
		return fmt.Errorf("check blackout periods: %w", err)
	}
	if blocked {
		return engine.ErrBlackoutConflict
	}

	const insertQ = `INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`
	if _, err := tx.ExecContext(ctx, insertQ,
		b.ID, b.TenantID, b.VenueID, b.BookingNumber, b.StartAt, b.EndAt,
		b.Status, b.PaymentStatus, b.HoldExpiresAt, b.IdempotencyKey, b.CustomerRef,
		b.GuestCount, b.EventType, b.Notes, b.ConfirmedBy, b.ConfirmedAt,
		b.CreatedAt, b.UpdatedAt,
	); err != nil {
		return mapError(err)
	}

	if b.IdempotencyKey != nil {
		const idemQ = `INSERT INTO idempotency_keys (tenant_id, idem_key, booking_id, created_at)
			VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, idemQ, b.TenantID, *b.IdempotencyKey, b.ID, b.CreatedAt); err != nil {
			return mapError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	committed = true
	return nil
}

// GetByID loads a booking scoped to its tenant.  Absent rows yield
// engine.ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, tenant, id uuid.UUID) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND id = $2`
	var b model.Booking
	if err := r.db.GetContext(ctx, &b, q, tenant, id); err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

// ListOverlapping returns active bookings overlapping the half-open
// interval for tenant+venue, ordered by start time.  The predicate
// start_at < end AND end_at > start matches the exclusion constraint's
// tstzrange overlap exactly.
func (r *BookingRepo) ListOverlapping(ctx context.Context, tenant, venue uuid.UUID, iv model.Interval, exclude *uuid.UUID) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE tenant_id = $1 AND venue_id = $2
		  AND status IN ('temp_hold','pending','confirmed')
		  AND start_at < $4 AND end_at > $3`
	args := []interface{}{tenant, venue, iv.Start, iv.End}
	if exclude != nil {
		q += ` AND id <> $5`
		args = append(args, *exclude)
	}
	q += ` ORDER BY start_at`
	out := []model.Booking{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// UpdateStatus commits a transition.  The WHERE clause pins the status
// the engine loaded, so a concurrent transition that already moved the
// row makes this one match nothing: engine.ErrNotFound, no write.
func (r *BookingRepo) UpdateStatus(ctx context.Context, b *model.Booking, from model.Status) error {
	const q = `UPDATE bookings
		SET status = $1, payment_status = $2, hold_expires_at = $3,
			confirmed_by = $4, confirmed_at = $5, notes = $6, updated_at = $7
		WHERE tenant_id = $8 AND id = $9 AND status = $10`
	res, err := r.db.ExecContext(ctx, q,
		b.Status, b.PaymentStatus, b.HoldExpiresAt,
		b.ConfirmedBy, b.ConfirmedAt, b.Notes, b.UpdatedAt,
		b.TenantID, b.ID, from,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return engine.ErrNotFound
	}
	return nil
}

// ListExpiredHolds returns temp_hold bookings whose hold expiry is at
// or before now, oldest expiry first.  A nil tenant scans all tenants.
func (r *BookingRepo) ListExpiredHolds(ctx context.Context, tenant *uuid.UUID, now time.Time, limit int) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'temp_hold' AND hold_expires_at <= $1`
	args := []interface{}{now}
	if tenant != nil {
		q += ` AND tenant_id = $2`
		args = append(args, *tenant)
	}
	q += fmt.Sprintf(` ORDER BY hold_expires_at LIMIT %d`, limit)
	out := []model.Booking{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// ListFinishedConfirmed returns confirmed bookings whose interval ended
// at or before now, oldest first.  A nil tenant scans all tenants.
func (r *BookingRepo) ListFinishedConfirmed(ctx context.Context, tenant *uuid.UUID, now time.Time, limit int) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'confirmed' AND end_at <= $1`
	args := []interface{}{now}
	if tenant != nil {
		q += ` AND tenant_id = $2`
		args = append(args, *tenant)
	}
	q += fmt.Sprintf(` ORDER BY end_at LIMIT %d`, limit)
	out := []model.Booking{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// ListByTenant returns the tenant's bookings newest first.
func (r *BookingRepo) ListByTenant(ctx context.Context, tenant uuid.UUID, limit, offset int) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
		WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	out := []model.Booking{}
	if err := r.db.SelectContext(ctx, &out, q, tenant, limit, offset); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// MaxSequence returns the highest numeric suffix among booking numbers
// matching PREFIX-YEAR-* for the tenant, or 0 when none exist.  The
// scan runs inside a transaction holding a per-tenant-per-year advisory
// lock so concurrent fallback scans serialize instead of both issuing
// the same next value; the unique booking_number index remains the
// final guard regardless.
func (r *BookingRepo) MaxSequence(ctx context.Context, tenant uuid.UUID, prefix string, year int) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sequence transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lockKey := fmt.Sprintf("seq:%s:%d", tenant, year)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return 0, fmt.Errorf("acquire sequence lock: %w", err)
	}

	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	const q = `SELECT COALESCE(MAX(CAST(substring(booking_number FROM '([0-9]+)$') AS INT)), 0)
		FROM bookings WHERE tenant_id = $1 AND booking_number LIKE $2`
	var max int
	if err := tx.QueryRowxContext(ctx, q, tenant, pattern).Scan(&max); err != nil {
		return 0, fmt.Errorf("scan max booking number: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence transaction: %w", err)
	}
	committed = true
	return max, nil
}
