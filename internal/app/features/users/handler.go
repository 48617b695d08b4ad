// Package users serves the signed-in user's own profile endpoints.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	userstore "github.com/dalemusser/bubblemap/internal/app/store/users"
	"github.com/dalemusser/bubblemap/internal/app/system/auth"
	"github.com/dalemusser/bubblemap/internal/app/system/inputval"
	"github.com/dalemusser/bubblemap/internal/app/system/timeouts"
	"github.com/dalemusser/bubblemap/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxBody = 4 << 10

type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetName(ctx context.Context, id primitive.ObjectID, name string) error
}

// LoginHistory lists a user's recent sign-ins, newest first.
type LoginHistory interface {
	Recent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error)
}

type Handler struct {
	Users      UserStore
	SessionMgr *auth.SessionManager
	Logins     LoginHistory // optional; without it the history is empty
	Log        *zap.Logger
}

// recentLogins caps GET /users/{id}/logins.
const recentLogins = 20

func NewHandler(users UserStore, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sessionMgr, Log: logger}
}

type nameBody struct {
	Name string `json:"name"`
}

// self resolves {id} and checks it is the signed-in user. It writes the
// error response and returns ok=false otherwise.
func self(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, signedIn := auth.CurrentUser(r)
	if !signedIn {
		auth.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	raw := chi.URLParam(r, "id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		auth.WriteJSONError(w, http.StatusBadRequest, "invalid user id")
		return primitive.NilObjectID, false
	}
	if raw != u.ID {
		auth.WriteJSONError(w, http.StatusForbidden, "forbidden")
		return primitive.NilObjectID, false
	}
	return id, true
}

// GetName handles GET /users/{id}/name.
func (h *Handler) GetName(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		auth.WriteJSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.Log.Error("users: get name failed", zap.String("user_id", id.Hex()), zap.Error(err))
		auth.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, nameBody{Name: u.Name})
}

// SetName handles PUT /users/{id}/name. The session keeps the new name so
// pages pick it up immediately.
func (h *Handler) SetName(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}

	var body nameBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		auth.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name, err := inputval.Username(body.Name)
	if err != nil {
		auth.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Users.SetName(ctx, id, name); {
	case errors.Is(err, userstore.ErrNotFound):
		auth.WriteJSONError(w, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, userstore.ErrDuplicateName):
		auth.WriteJSONError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.Log.Error("users: set name failed", zap.String("user_id", id.Hex()), zap.Error(err))
		auth.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{ID: id.Hex(), Name: name}); err != nil {
		h.Log.Warn("users: session refresh failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, nameBody{Name: name})
}

type loginEntry struct {
	At       time.Time `json:"at"`
	Provider string    `json:"provider"`
	IP       string    `json:"ip"`
	Created  bool      `json:"created"`
}

type loginsBody struct {
	Logins []loginEntry `json:"logins"`
}

// GetLogins handles GET /users/{id}/logins: the caller's own recent sign-ins.
func (h *Handler) GetLogins(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}

	body := loginsBody{Logins: []loginEntry{}}
	if h.Logins == nil {
		writeJSON(w, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	recs, err := h.Logins.Recent(ctx, id, recentLogins)
	if err != nil {
		h.Log.Error("users: list logins failed", zap.String("user_id", id.Hex()), zap.Error(err))
		auth.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	for _, rec := range recs {
		body.Logins = append(body.Logins, loginEntry{
			At:       rec.CreatedAt,
			Provider: rec.Provider,
			IP:       rec.IP,
			Created:  rec.Created,
		})
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
