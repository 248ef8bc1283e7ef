package engine

import (
	"time"
)

// Config carries the tunables of the engine.  Zero values are replaced
// with the defaults below by New.
type Config struct {
	HoldDuration    time.Duration // lifetime of a temp_hold before the sweeper may expire it
	SequencePrefix  string        // booking number prefix, e.g. "BK"
	SuggestionLimit int           // maximum number of alternative slots returned on conflict
	SuggestionGap   time.Duration // buffer required before the first conflict for an earlier slot
	SuggestionStep  time.Duration // forward shift between successive fallback suggestions
}

const (
	defaultHoldDuration    = 15 * time.Minute
	defaultSequencePrefix  = "BK"
	defaultSuggestionLimit = 3
	defaultSuggestionGap   = 15 * time.Minute
	defaultSuggestionStep  = time.Hour
)

// Engine composes the allocator, sequence generator, suggestion engine,
// idempotency guard and state machine into the operations exposed
// upward: CreateBooking, CheckAvailability, Transition and the two
// batch jobs.
type Engine struct {
	cfg Config

	bookings    BookingStore
	blackouts   BlackoutStore
	venues      VenueStore
	idempotency IdempotencyStore
	counter     Counter           // may be nil: fast path disabled
	cache       AvailabilityCache // may be nil: caching disabled
	publisher   EventPublisher    // may be nil: events disabled

	now func() time.Time // injectable clock for tests
}

// New wires an Engine.  bookings, blackouts, venues and idempotency are
// required; counter, cache and publisher may be nil, in which case the
// engine degrades gracefully (durable-only sequences, uncached
// availability, no events).
func New(cfg Config, bookings BookingStore, blackouts BlackoutStore, venues VenueStore, idempotency IdempotencyStore, counter Counter, cache AvailabilityCache, publisher EventPublisher) *Engine {
	if bookings == nil || blackouts == nil || venues == nil || idempotency == nil {
		panic("nil store passed to engine.New")
	}
	if cfg.HoldDuration <= 0 {
		cfg.HoldDuration = defaultHoldDuration
	}
	if cfg.SequencePrefix == "" {
		cfg.SequencePrefix = defaultSequencePrefix
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = defaultSuggestionLimit
	}
	if cfg.SuggestionGap <= 0 {
		cfg.SuggestionGap = defaultSuggestionGap
	}
	if cfg.SuggestionStep <= 0 {
		cfg.SuggestionStep = defaultSuggestionStep
	}
	return &Engine{
		cfg:         cfg,
		bookings:    bookings,
		blackouts:   blackouts,
		venues:      venues,
		idempotency: idempotency,
		counter:     counter,
		cache:       cache,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the engine's clock.  Tests use it to pin time.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}
