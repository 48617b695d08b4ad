// Package timeouts provides the timeout values used with context.WithTimeout
// around MongoDB calls made from HTTP handlers.
//
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads and writes (user lookups, renames)
//   - Connect: establishing the client at startup
package timeouts

import (
	"sync"
	"time"
)

const (
	DefaultPing    = 2 * time.Second
	DefaultShort   = 5 * time.Second
	DefaultConnect = 10 * time.Second
)

var (
	mu      sync.RWMutex
	ping    = DefaultPing
	short   = DefaultShort
	connect = DefaultConnect
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Connect returns the timeout for the initial database connection.
func Connect() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return connect
}

// Config holds timeout overrides. Zero values keep the current value.
type Config struct {
	Ping    time.Duration
	Short   time.Duration
	Connect time.Duration
}

// Configure applies cfg. Call it during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Connect > 0 {
		connect = cfg.Connect
	}
}

// Current returns the active configuration, for logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Connect: connect}
}
