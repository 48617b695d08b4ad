// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	healthfeature "github.com/dalemusser/bubblemap/internal/app/features/health"
	loginfeature "github.com/dalemusser/bubblemap/internal/app/features/login"
	logoutfeature "github.com/dalemusser/bubblemap/internal/app/features/logout"
	sessionfeature "github.com/dalemusser/bubblemap/internal/app/features/session"
	usersfeature "github.com/dalemusser/bubblemap/internal/app/features/users"
	loginstore "github.com/dalemusser/bubblemap/internal/app/store/logins"
	userstore "github.com/dalemusser/bubblemap/internal/app/store/users"
	"github.com/dalemusser/bubblemap/internal/app/system/auth"
	"github.com/dalemusser/bubblemap/internal/app/system/navigation"
	"github.com/dalemusser/bubblemap/internal/app/system/ratelimit"
	"github.com/dalemusser/bubblemap/internal/app/system/viewdata"
	"github.com/dalemusser/bubblemap/internal/app/system/viewloader"
	"github.com/dalemusser/bubblemap/internal/app/views"
	"github.com/dalemusser/bubblemap/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// userStore is everything the features need from user persistence.
type userStore interface {
	GetOrCreate(ctx context.Context, name string) (models.User, bool, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetName(ctx context.Context, id primitive.ObjectID, name string) error
}

// loginStore may be nil, in which case sign-ins are neither recorded nor listed.
type loginStore interface {
	CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string, created bool) error
	Recent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error)
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Secure cookies are enabled in production.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	var limiter *ratelimit.Limiter
	if appCfg.SignInRateLimit > 0 {
		limiter = ratelimit.New(appCfg.SignInRateLimit, time.Minute)
		go limiter.Run(context.Background())
	}

	return buildRouter(
		sessionMgr,
		userstore.New(deps.MongoDatabase),
		loginstore.New(deps.MongoDatabase),
		limiter,
		mongoPinger{c: deps.MongoClient},
		appCfg.MaxRedirects,
		logger,
	), nil
}

func buildRouter(sessionMgr *auth.SessionManager, users userStore, logins loginStore, limiter *ratelimit.Limiter, db healthfeature.Pinger, maxRedirects int, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Pages: the route table, guard and lazily loaded views. Mounted first so
	// every feature sub-router inherits the catch-all for unmatched paths.
	loader := viewloader.New(logger)
	views.Register(loader)

	nav := navigation.New(navigation.DefaultTable(), sessionMgr, loader, logger)
	nav.PageData = viewdata.New
	nav.MaxRedirects = maxRedirects
	nav.Mount(r)

	// Health checks for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(db, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Mount("/liveness", healthfeature.Routes(healthHandler))

	// Authentication; sign-in posts share one per-IP limit when configured.
	loginHandler := loginfeature.NewHandler(users, sessionMgr, logger)
	loginHandler.Logins = logins
	sessionHandler := sessionfeature.NewHandler(users, sessionMgr, logger)
	sessionHandler.Logins = logins

	var formLimit, apiLimit []func(http.Handler) http.Handler
	if limiter != nil {
		formLimit = append(formLimit, limiter.Middleware(loginfeature.TooManyAttempts))
		apiLimit = append(apiLimit, limiter.Middleware(sessionfeature.TooManyAttempts))
		loginHandler.Attempts = limiter
		sessionHandler.Attempts = limiter
	}

	loginfeature.Mount(r, loginHandler, formLimit...)
	r.Mount("/session", sessionfeature.Routes(sessionHandler, apiLimit...))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// User API
	usersHandler := usersfeature.NewHandler(users, sessionMgr, logger)
	usersHandler.Logins = logins
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	return r
}
