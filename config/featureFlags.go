package config

import (
	"os"
	"strings"
	"time"
)

// OrderEventsEnabled turns on publishing of order lifecycle events to Pub/Sub.
//
// Set via env:
// - ORDER_EVENTS_ENABLED=true
// - ORDER_EVENTS_TOPIC=<topic name>
func OrderEventsEnabled() bool {
	return envTrue("ORDER_EVENTS_ENABLED")
}

// SkipMigrations disables AutoMigrate on server startup (run ./cmd/seed-catalog -migrate instead).
func SkipMigrations() bool {
	return envTrue("SKIP_MIGRATIONS")
}

// LedgerLockTTL bounds how long a stock/status ledger lock may be held.
//
// Set via env:
// - LEDGER_LOCK_TTL_SECONDS (default 10)
func LedgerLockTTL() time.Duration {
	return time.Duration(IntFromEnv("LEDGER_LOCK_TTL_SECONDS", 10)) * time.Second
}

// CacheLifespan is the TTL of cached catalog objects in Redis.
//
// Set via env:
// - CACHE_LIFESPAN (hours, default 1)
func CacheLifespan() time.Duration {
	return time.Duration(IntFromEnv("CACHE_LIFESPAN", 1)) * time.Hour
}

func envTrue(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
