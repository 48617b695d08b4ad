package users

import (
	"github.com/dalemusser/bubblemap/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{id}/name", h.GetName)
		pr.Put("/{id}/name", h.SetName)
		pr.Get("/{id}/logins", h.GetLogins)
	})

	return r
}
