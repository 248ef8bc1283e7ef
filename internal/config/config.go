package config // package config loads application configuration from environment variables

import (
	"log"  // log is used to report configuration errors and halt execution
	"os"   // os provides access to environment variables
	"time" // time parses duration values
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Database settings point at the Postgres
// instance carrying the booking tables; the engine settings tune the
// hold lifecycle, sequence numbering and the background sweeper.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBSSLMode      string        // Postgres sslmode (default "disable")
	HoldDuration   time.Duration // lifetime of a temp_hold before it may expire
	SequencePrefix string        // booking number prefix (default "BK")
	SweepInterval  time.Duration // tick interval of the expiry/completion sweeper
	SweepBatchSize int           // per-tick row limit of each batch job
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message;
// the engine tunables have sensible defaults.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		DBSSLMode:      envStr("DB_SSLMODE", "disable"),
		HoldDuration:   envDur("HOLD_DURATION", 15*time.Minute),
		SequencePrefix: envStr("SEQUENCE_PREFIX", "BK"),
		SweepInterval:  envDur("SWEEP_INTERVAL", time.Minute),
		SweepBatchSize: envInt("SWEEP_BATCH_SIZE", 100),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
