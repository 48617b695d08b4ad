// Package session serves the JSON sign-in endpoint used by scripted clients.
package session

import (
	"context"
	"encoding/json"
	"net/http"

	loginstore "github.com/dalemusser/bubblemap/internal/app/store/logins"
	"github.com/dalemusser/bubblemap/internal/app/system/auth"
	"github.com/dalemusser/bubblemap/internal/app/system/inputval"
	"github.com/dalemusser/bubblemap/internal/app/system/ratelimit"
	"github.com/dalemusser/bubblemap/internal/app/system/timeouts"
	"github.com/dalemusser/bubblemap/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxBody bounds the request body of POST /session.
const maxBody = 4 << 10

type UserStore interface {
	GetOrCreate(ctx context.Context, name string) (models.User, bool, error)
}

// AttemptLimiter forgets a client's sign-in attempts after a success.
type AttemptLimiter interface {
	Reset(key string)
}

type LoginRecorder interface {
	CreateFrom(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider string, created bool) error
}

type Handler struct {
	Users      UserStore
	SessionMgr *auth.SessionManager
	Logins     LoginRecorder  // optional
	Attempts   AttemptLimiter // optional
	Log        *zap.Logger
}

func NewHandler(users UserStore, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sessionMgr, Log: logger}
}

type loginRequest struct {
	Name string `json:"name"`
}

type loginResponse struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// Create handles POST /session.
//
// 201 {"identifier": "...", "name": "..."} when the user is new,
// 200 with the same body when it already existed,
// 400 on a malformed body or invalid name.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&req); err != nil {
		auth.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name, err := inputval.Username(req.Name)
	if err != nil {
		auth.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, created, err := h.Users.GetOrCreate(ctx, name)
	if err != nil {
		h.Log.Error("session: user lookup failed", zap.String("name", name), zap.Error(err))
		auth.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{ID: u.ID.Hex(), Name: u.Name}); err != nil {
		h.Log.Error("session: save session failed", zap.Error(err))
		auth.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.Attempts != nil {
		h.Attempts.Reset(ratelimit.ClientIP(r))
	}

	if h.Logins != nil {
		if err := h.Logins.CreateFrom(ctx, r, u.ID, loginstore.ProviderAPI, created); err != nil {
			h.Log.Warn("session: record sign-in failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		}
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(loginResponse{Identifier: u.ID.Hex(), Name: u.Name})
}

// TooManyAttempts answers a rate-limited sign-in with 429.
func TooManyAttempts(w http.ResponseWriter, r *http.Request) {
	auth.WriteJSONError(w, http.StatusTooManyRequests, "too many sign-in attempts")
}
