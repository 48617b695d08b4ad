package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mount registers the login form post on r. It shares the /login path with
// the navigator's GET handler, so it is not a mounted sub-router.
func Mount(r chi.Router, h *Handler, mws ...func(http.Handler) http.Handler) {
	r.With(mws...).Post("/login", h.HandleLoginPost)
}
