package config

import (
	"time"
)

// AvailabilityCacheConfig defines settings for the availability report
// cache.  When Enabled is false or no Redis client is configured,
// availability checks always hit the database.  TTL bounds how stale a
// cached report can be on top of the venue-generation invalidation.
type AvailabilityCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// LoadAvailabilityCacheConfig reads environment variables to build an
// AvailabilityCacheConfig.  Defaults are used when variables are unset.
func LoadAvailabilityCacheConfig() AvailabilityCacheConfig {
	return AvailabilityCacheConfig{
		Enabled: envBool("AVAILABILITY_CACHE_ENABLED", true),
		TTL:     envDur("AVAILABILITY_CACHE_TTL", 30*time.Second),
	}
}
