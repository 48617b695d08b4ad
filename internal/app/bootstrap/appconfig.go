// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds bubblemap's app-level configuration. WAFFLE's CoreConfig
// covers ports, TLS, logging and the environment name.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // e.g. mongodb://localhost:27017
	MongoDatabase string

	// MongoDB call timeouts (see system/timeouts)
	PingTimeout    time.Duration
	ShortTimeout   time.Duration
	ConnectTimeout time.Duration

	// Session management configuration
	SessionKey          string // signs session cookies (must be strong in production)
	SessionKeyGenerated bool   // true when no key was configured and a random one was made
	SessionName         string // cookie name (default: bubblemap-session)
	SessionDomain       string // cookie domain (blank means current host)

	// Navigation
	MaxRedirects int // redirect hops one page navigation may follow

	// Sign-in attempts allowed per client IP per minute (0 disables the limit)
	SignInRateLimit int
}
