package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/venuecore/booking-engine/internal/cache"
	"github.com/venuecore/booking-engine/internal/config"
	"github.com/venuecore/booking-engine/internal/database"
	"github.com/venuecore/booking-engine/internal/engine"
	"github.com/venuecore/booking-engine/internal/handler"
	"github.com/venuecore/booking-engine/internal/middleware"
	"github.com/venuecore/booking-engine/internal/queue"
	"github.com/venuecore/booking-engine/internal/repository"
	"github.com/venuecore/booking-engine/internal/router"
	queue_publisher "github.com/venuecore/booking-engine/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the sequence fast path,
	// the availability cache and rate limiting, and the engine degrades
	// to the durable store.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, running durable-only")
	}

	var counter engine.Counter
	var availCache engine.AvailabilityCache
	if rdb != nil {
		counter = cache.NewSequenceCounter(rdb)
		if cacheCfg := config.LoadAvailabilityCacheConfig(); cacheCfg.Enabled {
			availCache = cache.NewAvailabilityCache(rdb, cacheCfg.TTL)
		}
	}

	eng := engine.New(engine.Config{
		HoldDuration:   cfg.HoldDuration,
		SequencePrefix: cfg.SequencePrefix,
	},
		repository.NewBookingRepo(db),
		repository.NewBlackoutRepo(db),
		repository.NewVenueRepo(db),
		repository.NewIdempotencyRepo(db),
		counter,
		availCache,
		queue_publisher.New(),
	)

	// Background consumer mirroring lifecycle events into logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	// Sweeper: hold expiry is soft and enforced only here, so a hold may
	// outlive its nominal expiry until the next tick.
	go runSweeper(eng, cfg.SweepInterval, cfg.SweepBatchSize)

	e := echo.New()
	router.RegisterRoutes(e, db)
	router.RegisterBooking(e,
		handler.NewBookingHandler(eng),
		handler.NewAvailabilityHandler(eng),
		handler.NewBlackoutHandler(eng),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// runSweeper drives the two batch jobs on a fixed tick across all
// tenants.  Per-row failures are handled inside the jobs; only listing
// failures surface here, and they are logged and retried next tick.
func runSweeper(eng *engine.Engine, interval time.Duration, limit int) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		if n, err := eng.BatchExpireHolds(ctx, nil, limit); err != nil {
			log.Printf("sweeper: expire holds: %v", err)
		} else if n > 0 {
			log.Printf("sweeper: expired %d holds", n)
		}
		if n, err := eng.BatchCompleteBookings(ctx, nil, limit); err != nil {
			log.Printf("sweeper: complete bookings: %v", err)
		} else if n > 0 {
			log.Printf("sweeper: completed %d bookings", n)
		}
		cancel()
	}
}
