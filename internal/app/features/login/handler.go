// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"net/url"

	loginstore "github.com/dalemusser/bubblemap/internal/app/store/logins"
	"github.com/dalemusser/bubblemap/internal/app/system/auth"
	"github.com/dalemusser/bubblemap/internal/app/system/inputval"
	"github.com/dalemusser/bubblemap/internal/app/system/ratelimit"
	"github.com/dalemusser/bubblemap/internal/app/system/timeouts"
	"github.com/dalemusser/bubblemap/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is the part of the user store the login flow needs.
type UserStore interface {
	GetOrCreate(ctx context.Context, name string) (u models.User, created bool, err error)
}

// LoginRecorder stores a record of each successful sign-in.
type LoginRecorder interface {
	CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string, created bool) error
}

// AttemptLimiter forgets a client's sign-in attempts after a success.
type AttemptLimiter interface {
	Reset(key string)
}

type Handler struct {
	Users      UserStore
	SessionMgr *auth.SessionManager
	Logins     LoginRecorder  // optional
	Attempts   AttemptLimiter // optional
	Log        *zap.Logger
}

func NewHandler(users UserStore, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLoginPost signs the user in by name, creating the user on first
// visit. The GET side of /login is served by the navigator.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		backToLogin(w, r, "Could not read the form.")
		return
	}

	name, err := inputval.Username(r.PostForm.Get("username"))
	if err != nil {
		backToLogin(w, r, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, created, err := h.Users.GetOrCreate(ctx, name)
	if err != nil {
		h.Log.Error("login: user lookup failed", zap.String("name", name), zap.Error(err))
		backToLogin(w, r, "Something went wrong, please try again.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{ID: u.ID.Hex(), Name: u.Name}); err != nil {
		h.Log.Error("login: save session failed", zap.Error(err))
		backToLogin(w, r, "Something went wrong, please try again.")
		return
	}

	if h.Attempts != nil {
		h.Attempts.Reset(ratelimit.ClientIP(r))
	}

	if h.Logins != nil {
		if err := h.Logins.CreateFrom(ctx, r, u.ID, loginstore.ProviderForm, created); err != nil {
			h.Log.Warn("login: record sign-in failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		}
	}

	h.Log.Info("user signed in",
		zap.String("user_id", u.ID.Hex()),
		zap.Bool("created", created))

	redirect(w, r, "/map")
}

// TooManyAttempts answers a rate-limited sign-in.
func TooManyAttempts(w http.ResponseWriter, r *http.Request) {
	backToLogin(w, r, "Too many sign-in attempts. Please wait a minute and try again.")
}

func backToLogin(w http.ResponseWriter, r *http.Request, msg string) {
	redirect(w, r, "/login?error="+url.QueryEscape(msg))
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
