// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/bubblemap/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after the database is ready and before the handler is built.
// Page templates are deliberately not loaded here; the view loader parses
// each one on its first visit.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	t := timeouts.Current()
	logger.Info("bubblemap starting",
		zap.String("env", coreCfg.Env),
		zap.Int("max_redirects", appCfg.MaxRedirects),
		zap.Duration("timeout_short", t.Short),
		zap.Duration("timeout_ping", t.Ping))
	return nil
}
