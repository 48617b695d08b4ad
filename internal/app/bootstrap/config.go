// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/dalemusser/bubblemap/internal/app/system/auth"
	"github.com/dalemusser/bubblemap/internal/app/system/navigation"
	"github.com/dalemusser/bubblemap/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for bubblemap.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: BUBBLEMAP_MONGO_URI, BUBBLEMAP_SESSION_KEY, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "bubblemap", Desc: "MongoDB database name"},
	{Name: "mongo_ping_timeout", Default: "2s", Desc: "Timeout for health-check pings (e.g., 2s, 500ms)"},
	{Name: "mongo_short_timeout", Default: "5s", Desc: "Timeout for single-document reads and writes"},
	{Name: "mongo_connect_timeout", Default: "10s", Desc: "Timeout for the initial MongoDB connection"},
	{Name: "session_key", Default: "", Desc: "Session signing key, 32+ chars (random per process if blank; required in prod)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "signin_rate_limit", Default: 10, Desc: "Sign-in attempts allowed per client IP per minute (0 disables)"},
	{Name: "max_redirects", Default: navigation.DefaultMaxRedirects, Desc: "Maximum redirects one page navigation may follow"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
// Precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BUBBLEMAP", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		PingTimeout:    appValues.Duration("mongo_ping_timeout", timeouts.DefaultPing),
		ShortTimeout:   appValues.Duration("mongo_short_timeout", timeouts.DefaultShort),
		ConnectTimeout: appValues.Duration("mongo_connect_timeout", timeouts.DefaultConnect),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		MaxRedirects:  appValues.Int("max_redirects"),

		SignInRateLimit: appValues.Int("signin_rate_limit"),
	}

	// Without a configured key, sessions survive only as long as the process.
	if appCfg.SessionKey == "" {
		appCfg.SessionKey = string(securecookie.GenerateRandomKey(32))
		appCfg.SessionKeyGenerated = true
		logger.Warn("no session_key configured; using a random key, sessions end on restart")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env, appCfg)
}

func validateApp(env string, appCfg AppConfig) error {
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database must not be empty")
	}
	if env == "prod" && appCfg.SessionKeyGenerated {
		return errors.New("session_key is required in prod")
	}
	if appCfg.MaxRedirects < 1 {
		return fmt.Errorf("max_redirects must be at least 1, got %d", appCfg.MaxRedirects)
	}
	if appCfg.PingTimeout <= 0 || appCfg.ShortTimeout <= 0 || appCfg.ConnectTimeout <= 0 {
		return errors.New("mongo timeouts must be positive")
	}
	if appCfg.SignInRateLimit < 0 {
		return fmt.Errorf("signin_rate_limit must not be negative, got %d", appCfg.SignInRateLimit)
	}
	return nil
}

// applyTimeouts hands the configured MongoDB timeouts to the timeouts package.
func applyTimeouts(appCfg AppConfig) {
	timeouts.Configure(timeouts.Config{
		Ping:    appCfg.PingTimeout,
		Short:   appCfg.ShortTimeout,
		Connect: appCfg.ConnectTimeout,
	})
}
