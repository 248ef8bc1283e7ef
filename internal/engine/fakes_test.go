package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/venuecore/booking-engine/internal/model"
)

// memStore is an in-memory implementation of the engine's durable store
// interfaces.  Insert mirrors the Postgres write path: under one lock it
// checks blackouts, active-interval overlap, booking number uniqueness
// and the write-once idempotency mapping, so concurrent CreateBooking
// calls see the same exactly-one-wins behavior the exclusion constraint
// provides in production.
type memStore struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]model.Booking
	blackouts map[uuid.UUID]model.BlackoutPeriod
	venues    map[uuid.UUID]model.Venue
	idem      map[string]uuid.UUID

	insertErr error // when set, Insert fails with it
	listErr   error // when set, List* fail with it
}

func newMemStore() *memStore {
	return &memStore{
		bookings:  make(map[uuid.UUID]model.Booking),
		blackouts: make(map[uuid.UUID]model.BlackoutPeriod),
		venues:    make(map[uuid.UUID]model.Venue),
		idem:      make(map[string]uuid.UUID),
	}
}

func idemKey(tenant uuid.UUID, key string) string {
	return tenant.String() + "|" + key
}

func (s *memStore) addVenue(v model.Venue) { s.venues[v.ID] = v }

func (s *memStore) addBlackout(b model.BlackoutPeriod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blackouts[b.ID] = b
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memStore) Insert(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	iv := b.Interval()
	for _, bl := range s.blackouts {
		if bl.TenantID == b.TenantID && bl.VenueID == b.VenueID && bl.Interval().Overlaps(iv) {
			return ErrBlackoutConflict
		}
	}
	for _, existing := range s.bookings {
		if existing.TenantID != b.TenantID {
			continue
		}
		if existing.VenueID == b.VenueID && existing.Status.IsActive() && existing.Interval().Overlaps(iv) {
			return ErrIntervalConflict
		}
		if existing.BookingNumber == b.BookingNumber {
			return ErrDuplicateNumber
		}
	}
	if b.IdempotencyKey != nil {
		k := idemKey(b.TenantID, *b.IdempotencyKey)
		if _, taken := s.idem[k]; taken {
			return ErrIdempotencyReplay
		}
		s.idem[k] = b.ID
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) GetByID(_ context.Context, tenant, id uuid.UUID) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.TenantID != tenant {
		return nil, ErrNotFound
	}
	out := b
	return &out, nil
}

func (s *memStore) ListOverlapping(_ context.Context, tenant, venue uuid.UUID, iv model.Interval, exclude *uuid.UUID) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Booking
	for _, b := range s.bookings {
		if b.TenantID != tenant || b.VenueID != venue || !b.Status.IsActive() {
			continue
		}
		if exclude != nil && b.ID == *exclude {
			continue
		}
		if b.Interval().Overlaps(iv) {
			out = append(out, b)
		}
	}
	sortBookingsByStart(out)
	return out, nil
}

func (s *memStore) UpdateStatus(_ context.Context, b *model.Booking, from model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[b.ID]
	if !ok || cur.TenantID != b.TenantID || cur.Status != from {
		return ErrNotFound
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) ListExpiredHolds(_ context.Context, tenant *uuid.UUID, now time.Time, limit int) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Booking
	for _, b := range s.bookings {
		if tenant != nil && b.TenantID != *tenant {
			continue
		}
		if b.Status == model.StatusTempHold && b.HoldExpiresAt != nil && !b.HoldExpiresAt.After(now) {
			out = append(out, b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) ListFinishedConfirmed(_ context.Context, tenant *uuid.UUID, now time.Time, limit int) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Booking
	for _, b := range s.bookings {
		if tenant != nil && b.TenantID != *tenant {
			continue
		}
		if b.Status == model.StatusConfirmed && !b.EndAt.After(now) {
			out = append(out, b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) ListByTenant(_ context.Context, tenant uuid.UUID, limit, offset int) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.TenantID == tenant {
			out = append(out, b)
		}
	}
	sortBookingsByStart(out)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) MaxSequence(_ context.Context, tenant uuid.UUID, prefix string, year int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	var n int
	for _, b := range s.bookings {
		if b.TenantID != tenant {
			continue
		}
		if _, err := fmt.Sscanf(b.BookingNumber, prefix+"-"+fmt.Sprint(year)+"-%d", &n); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

// BlackoutStore implementation.

func (s *memStore) InsertBlackout(_ context.Context, b *model.BlackoutPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blackouts[b.ID] = *b
	return nil
}

func (s *memStore) Delete(_ context.Context, tenant, id uuid.UUID) (*model.BlackoutPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blackouts[id]
	if !ok || b.TenantID != tenant {
		return nil, ErrNotFound
	}
	delete(s.blackouts, id)
	out := b
	return &out, nil
}

func (s *memStore) ListByVenue(_ context.Context, tenant, venue uuid.UUID) ([]model.BlackoutPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BlackoutPeriod
	for _, b := range s.blackouts {
		if b.TenantID == tenant && b.VenueID == venue {
			out = append(out, b)
		}
	}
	return out, nil
}

// blackoutView adapts memStore to BlackoutStore: InsertBlackout avoids
// the name clash with the booking Insert.
type blackoutView struct{ *memStore }

func (v blackoutView) Insert(ctx context.Context, b *model.BlackoutPeriod) error {
	return v.InsertBlackout(ctx, b)
}

func (v blackoutView) ListOverlapping(_ context.Context, tenant, venue uuid.UUID, iv model.Interval) ([]model.BlackoutPeriod, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []model.BlackoutPeriod
	for _, b := range v.blackouts {
		if b.TenantID == tenant && b.VenueID == venue && b.Interval().Overlaps(iv) {
			out = append(out, b)
		}
	}
	return out, nil
}

// venueView adapts memStore to VenueStore.
type venueView struct{ *memStore }

func (v venueView) GetByID(_ context.Context, tenant, id uuid.UUID) (*model.Venue, error) {
	ven, ok := v.venues[id]
	if !ok || ven.TenantID != tenant {
		return nil, ErrNotFound
	}
	out := ven
	return &out, nil
}

// idemView adapts memStore to IdempotencyStore.
type idemView struct{ *memStore }

func (v idemView) Get(_ context.Context, tenant uuid.UUID, key string) (*model.Booking, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.idem[idemKey(tenant, key)]
	if !ok {
		return nil, ErrNotFound
	}
	b, ok := v.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := b
	return &out, nil
}

// memCounter is an in-memory sequence fast path with a switchable
// outage.
type memCounter struct {
	mu      sync.Mutex
	vals    map[string]int64
	down    bool
	incrs   int
	resyncs int
}

func newMemCounter() *memCounter {
	return &memCounter{vals: make(map[string]int64)}
}

func (c *memCounter) key(tenant uuid.UUID, year int) string {
	return fmt.Sprintf("%s:%d", tenant, year)
}

func (c *memCounter) Incr(_ context.Context, tenant uuid.UUID, year int, _ time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return 0, fmt.Errorf("counter unavailable")
	}
	c.incrs++
	k := c.key(tenant, year)
	c.vals[k]++
	return c.vals[k], nil
}

func (c *memCounter) Resync(_ context.Context, tenant uuid.UUID, year int, floor int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return fmt.Errorf("counter unavailable")
	}
	c.resyncs++
	k := c.key(tenant, year)
	if c.vals[k] < floor {
		c.vals[k] = floor
	}
	return nil
}

// memPublisher records published events.
type memPublisher struct {
	mu     sync.Mutex
	events []BookingEvent
	err    error
}

func (p *memPublisher) PublishBookingEvent(_ context.Context, ev BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *memPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func sortBookingsByStart(bs []model.Booking) {
	for i := 1; i < len(bs); i++ {
		for j := i; j > 0 && bs[j].StartAt.Before(bs[j-1].StartAt); j-- {
			bs[j], bs[j-1] = bs[j-1], bs[j]
		}
	}
}

// fixture bundles an engine wired to in-memory stores with a pinned
// clock and one seeded venue.
type fixture struct {
	eng     *Engine
	store   *memStore
	counter *memCounter
	pub     *memPublisher
	tenant  uuid.UUID
	venue   uuid.UUID
	now     time.Time
}

func newFixture(cfg Config) *fixture {
	store := newMemStore()
	counter := newMemCounter()
	pub := &memPublisher{}
	tenant := uuid.New()
	venue := uuid.New()
	store.addVenue(model.Venue{
		ID:                venue,
		TenantID:          tenant,
		Name:              "Grand Hall",
		Capacity:          120,
		MinBookingMinutes: 60,
	})
	now := time.Date(2025, time.December, 20, 10, 0, 0, 0, time.UTC)
	eng := New(cfg, store, blackoutView{store}, venueView{store}, idemView{store}, counter, nil, pub).
		WithClock(func() time.Time { return now })
	f := &fixture{eng: eng, store: store, counter: counter, pub: pub, tenant: tenant, venue: venue, now: now}
	return f
}

// setNow moves the fixture clock.
func (f *fixture) setNow(t time.Time) {
	f.now = t
	f.eng.WithClock(func() time.Time { return f.now })
}

func (f *fixture) createInput(start, end time.Time) CreateBookingInput {
	return CreateBookingInput{
		TenantID:    f.tenant,
		VenueID:     f.venue,
		Interval:    model.Interval{Start: start, End: end},
		CustomerRef: "cust-1",
		GuestCount:  10,
	}
}
