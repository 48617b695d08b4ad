package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mws ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(mws...).Post("/", h.Create) // mounted under /session
	return r
}
