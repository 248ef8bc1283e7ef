package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// nextBookingNumber produces the next human-readable booking number for
// the tenant, formatted PREFIX-YEAR-NNNN.  The fast path is an atomic
// increment of the ephemeral counter keyed by tenant+year; the
// counter's first increment attaches an expiry at the end of the year
// so stale tenants cost nothing.  When the ephemeral store is
// unavailable the generator falls back to a durable scan for the
// highest existing number, takes +1, and resyncs the counter upward so
// the fast path never reissues a value once it recovers.  Numbers are
// strictly increasing per tenant+year and never reused across
// fast/fallback transitions; if both paths fail the booking is not
// created at all.
//
// skipFastPath forces the durable scan.  It is set when a previously
// issued number collided with an existing row: the counter is known
// stale at that point (a failed resync can leave it several values
// behind after an outage), so trusting it again would just reissue
// another taken number.  The durable path also resyncs the counter so
// the fast path resumes above the collision.
func (e *Engine) nextBookingNumber(ctx context.Context, tenant uuid.UUID, skipFastPath bool) (string, error) {
	now := e.now()
	year := now.Year()

	if e.counter != nil && !skipFastPath {
		n, err := e.counter.Incr(ctx, tenant, year, endOfYear(year))
		if err == nil {
			return formatBookingNumber(e.cfg.SequencePrefix, year, n), nil
		}
		log.Printf("sequence: fast path unavailable for tenant %s, falling back: %v", tenant, err)
	}

	max, err := e.bookings.MaxSequence(ctx, tenant, e.cfg.SequencePrefix, year)
	if err != nil {
		return "", &InfrastructureError{Op: "sequence fallback scan", Err: err}
	}
	n := int64(max) + 1

	// Raise the ephemeral counter to at least the value just issued so
	// the fast path resumes above it.  Best effort: the store is still
	// assumed down, and the unique booking_number index remains the
	// final guard either way.
	if e.counter != nil {
		if err := e.counter.Resync(ctx, tenant, year, n); err != nil {
			log.Printf("sequence: resync failed for tenant %s: %v", tenant, err)
		}
	}
	return formatBookingNumber(e.cfg.SequencePrefix, year, n), nil
}

// formatBookingNumber renders PREFIX-YEAR-NNNN, zero-padding the
// counter to four digits and growing naturally beyond 9999.
func formatBookingNumber(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n)
}

// endOfYear returns the first instant of the following year in UTC,
// used as the expiry of the per-year counter.
func endOfYear(year int) time.Time {
	return time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
}
