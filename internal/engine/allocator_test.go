package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/venuecore/booking-engine/internal/model"
)

// memCache records availability reports keyed by tenant, venue and the
// requested window, invalidating per venue like the Redis-backed cache.
type memCache struct {
	mu      sync.Mutex
	reports map[string]*AvailabilityReport
	hits    int
	sets    int
	drops   int
}

func newMemCache() *memCache {
	return &memCache{reports: make(map[string]*AvailabilityReport)}
}

func cacheKey(tenant, venue uuid.UUID, iv model.Interval) string {
	return fmt.Sprintf("%s:%s:%d:%d", tenant, venue, iv.Start.Unix(), iv.End.Unix())
}

func (c *memCache) Get(_ context.Context, tenant, venue uuid.UUID, iv model.Interval) (*AvailabilityReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[cacheKey(tenant, venue, iv)]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *memCache) Set(_ context.Context, tenant, venue uuid.UUID, iv model.Interval, report *AvailabilityReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.reports[cacheKey(tenant, venue, iv)] = report
}

func (c *memCache) Invalidate(_ context.Context, tenant, venue uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drops++
	prefix := tenant.String() + ":" + venue.String() + ":"
	for k := range c.reports {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(c.reports, k)
		}
	}
}

func TestCheckAvailabilityEmptyVenue(t *testing.T) {
	f := newFixture(Config{})
	start := f.now.Add(24 * time.Hour)
	report, err := f.eng.CheckAvailability(context.Background(), f.tenant, f.venue, model.Interval{Start: start, End: start.Add(2 * time.Hour)}, nil)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !report.Available {
		t.Error("empty venue reported unavailable")
	}
	if len(report.Conflicts) != 0 || len(report.Blackouts) != 0 || len(report.Alternatives) != 0 {
		t.Errorf("report = %+v, want empty conflict sets", report)
	}
}

func TestCheckAvailabilityReportsConflicts(t *testing.T) {
	f := newFixture(Config{})
	ctx := context.Background()

	start := f.now.Add(24 * time.Hour)
	booked, err := f.eng.CreateBooking(ctx, f.createInput(start, start.Add(4*time.Hour)))
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	report, err := f.eng.CheckAvailability(ctx, f.tenant, f.venue, model.Interval{Start: start.Add(time.Hour), End: start.Add(3 * time.Hour)}, nil)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if report.Available {
		t.Error("overlapping interval reported available")
	}
	if len(report.Conflicts) != 1 || report.Conflicts[0].ID != booked.ID {
		t.Errorf("conflicts = %+v, want the seeded booking", report.Conflicts)
	}
	if len(report.Alternatives) == 0 {
		t.Error("no alternatives offered for a taken slot")
	}

	// The booked interval's exact boundary is free: half-open semantics.
	report, err = f.eng.CheckAvailability(ctx, f.tenant, f.venue, model.Interval{Start: start.Add(4 * time.Hour), End: start.Add(6 * time.Hour)}, nil)
	if err != nil {
		t.Fatalf("boundary check: %v", err)
	}
	if !report.Available {
		t.Error("interval starting at the booked end reported unavailable")
	}
}

func TestCheckAvailabilityExcludesGivenBooking(t *testing.T) {
	f := newFixture(Config{})
	ctx := context.Background()

	start := f.now.Add(24 * time.Hour)
	booked, err := f.eng.CreateBooking(ctx, f.createInput(start, start.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	// Moving a booking onto its own slot must not see itself as a
	// conflict.
	report, err := f.eng.CheckAvailability(ctx, f.tenant, f.venue, booked.Interval(), &booked.ID)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !report.Available {
		t.Errorf("report = %+v, want available when the sole conflict is excluded", report)
	}
}

func TestCheckAvailabilityRejectsMalformedInterval(t *testing.T) {
	f := newFixture(Config{})
	start := f.now.Add(24 * time.Hour)
	_, err := f.eng.CheckAvailability(context.Background(), f.tenant, f.venue, model.Interval{Start: start, End: start.Add(-time.Hour)}, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %T (%v), want *ValidationError", err, err)
	}
}

func TestCheckAvailabilityUsesCacheAndInvalidatesOnWrite(t *testing.T) {
	f := newFixture(Config{})
	cache := newMemCache()
	f.eng.cache = cache
	ctx := context.Background()

	start := f.now.Add(24 * time.Hour)
	iv := model.Interval{Start: start, End: start.Add(2 * time.Hour)}

	if _, err := f.eng.CheckAvailability(ctx, f.tenant, f.venue, iv, nil); err != nil {
		t.Fatalf("first check: %v", err)
	}
	if _, err := f.eng.CheckAvailability(ctx, f.tenant, f.venue, iv, nil); err != nil {
		t.Fatalf("second check: %v", err)
	}
	if got, want := cache.sets, 1; got != want {
		t.Errorf("cache sets = %d, want %d", got, want)
	}
	if got, want := cache.hits, 1; got != want {
		t.Errorf("cache hits = %d, want %d", got, want)
	}

	// A reservation write drops the venue's cached reports; the next
	// check sees the new booking.
	if _, err := f.eng.CreateBooking(ctx, f.createInput(start, start.Add(2*time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}
	report, err := f.eng.CheckAvailability(ctx, f.tenant, f.venue, iv, nil)
	if err != nil {
		t.Fatalf("post-write check: %v", err)
	}
	if report.Available {
		t.Error("stale availability served after a reservation write")
	}
}

func TestAddBlackoutInvalidatesAndBlocks(t *testing.T) {
	f := newFixture(Config{})
	cache := newMemCache()
	f.eng.cache = cache
	ctx := context.Background()

	start := f.now.Add(24 * time.Hour)
	bl := &model.BlackoutPeriod{
		TenantID: f.tenant,
		VenueID:  f.venue,
		StartAt:  start,
		EndAt:    start.Add(8 * time.Hour),
		Reason:   "floor refinishing",
	}
	if err := f.eng.AddBlackout(ctx, bl); err != nil {
		t.Fatalf("AddBlackout: %v", err)
	}
	if bl.ID == uuid.Nil {
		t.Error("blackout ID not assigned")
	}
	if got, want := cache.drops, 1; got != want {
		t.Errorf("cache invalidations = %d, want %d", got, want)
	}

	report, err := f.eng.CheckAvailability(ctx, f.tenant, f.venue, model.Interval{Start: start.Add(time.Hour), End: start.Add(3 * time.Hour)}, nil)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if report.Available {
		t.Error("interval inside a blackout reported available")
	}
	if len(report.Blackouts) != 1 {
		t.Errorf("blackouts = %+v, want one entry", report.Blackouts)
	}

	if err := f.eng.RemoveBlackout(ctx, f.tenant, bl.ID); err != nil {
		t.Fatalf("RemoveBlackout: %v", err)
	}
	if got, want := cache.drops, 2; got != want {
		t.Errorf("cache invalidations after remove = %d, want %d", got, want)
	}
}
