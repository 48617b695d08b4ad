package logout

import "github.com/go-chi/chi/v5"

// Routes is mounted under /logout. Signing out an anonymous visitor is a
// harmless no-op, so no guard is applied.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogout)
	r.Post("/", h.ServeLogout)
	return r
}
