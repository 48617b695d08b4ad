package navigation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/bubblemap/internal/app/system/viewloader"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultMaxRedirects bounds how many redirects one navigation may follow.
const DefaultMaxRedirects = 8

var (
	ErrRedirectLoop = errors.New("navigation: too many redirects")
	ErrUnknownRoute = errors.New("navigation: unknown route name")
	ErrNoMatch      = errors.New("navigation: no route matches path")
)

// SessionStore answers whether the request carries a user session.
// Read failures must be reported as false.
type SessionStore interface {
	HasSession(r *http.Request) bool
}

// ViewLoader resolves a view id to renderable content on demand.
type ViewLoader interface {
	Resolve(ctx context.Context, id string) (viewloader.View, error)
}

// Resolution is where a navigation ends up.
type Resolution struct {
	Route Route
	Path  string   // cleaned path of the stable route
	Hops  []string // redirect targets followed, in order
}

// Redirected reports whether any redirect was followed.
func (res Resolution) Redirected() bool { return len(res.Hops) > 0 }

// Navigator applies the route table and guard to page requests.
type Navigator struct {
	Table    *Table
	Sessions SessionStore
	Views    ViewLoader
	Log      *zap.Logger

	// PageData builds the view model handed to a view; nil renders with nil data.
	PageData func(r *http.Request, route Route) any

	// MaxRedirects overrides DefaultMaxRedirects when > 0.
	MaxRedirects int
}

// New constructs a Navigator over the given table and collaborators.
func New(table *Table, sessions SessionStore, views ViewLoader, logger *zap.Logger) *Navigator {
	return &Navigator{
		Table:    table,
		Sessions: sessions,
		Views:    views,
		Log:      logger,
	}
}

func (n *Navigator) maxRedirects() int {
	if n.MaxRedirects > 0 {
		return n.MaxRedirects
	}
	return DefaultMaxRedirects
}

// Resolve follows static redirects and guard redirects from target until it
// reaches a route that neither redirects nor is redirected by the guard.
// Every redirect target is matched and guarded again.
func (n *Navigator) Resolve(target string, sessionPresent bool) (Resolution, error) {
	var res Resolution
	p := CleanPath(target)
	limit := n.maxRedirects()

	for {
		rt, ok := n.Table.Match(p)
		if !ok {
			return res, fmt.Errorf("%w: %s", ErrNoMatch, p)
		}

		var next string
		if rt.IsRedirect() {
			next = rt.Redirect
		} else if d := Guard(rt.Meta, sessionPresent); d.Action == Redirect {
			to, ok := n.Table.ByName(d.To)
			if !ok {
				return res, fmt.Errorf("%w: %q", ErrUnknownRoute, d.To)
			}
			next = to.Path
		} else {
			res.Route = rt
			res.Path = p
			return res, nil
		}

		if len(res.Hops) >= limit {
			return res, fmt.Errorf("%w: %d redirects starting at %s", ErrRedirectLoop, limit, target)
		}
		res.Hops = append(res.Hops, next)
		p = CleanPath(next)
	}
}

// Mount registers a GET handler for every route in the table and installs
// the catch-all as r's NotFound handler. A GET that reaches no page, including
// one that falls through a feature sub-router, is resolved like any other
// navigation. Call Mount before mounting sub-routers so they inherit it.
func (n *Navigator) Mount(r chi.Router) {
	for _, rt := range n.Table.Routes() {
		r.Get(rt.Path, n.ServeHTTP)
	}
	r.NotFound(n.ServeHTTP)
	r.MethodNotAllowed(n.methodNotAllowed)
}

// methodNotAllowed sends page navigations (GET/HEAD) through the table; any
// other method keeps its 405.
func (n *Navigator) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		n.ServeHTTP(w, r)
		return
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// ServeHTTP resolves the request path and either redirects the browser to the
// stable route in one hop or renders the route's view.
func (n *Navigator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	present := n.Sessions.HasSession(r)

	res, err := n.Resolve(r.URL.Path, present)
	if err != nil {
		n.Log.Error("navigation: resolve failed",
			zap.String("path", r.URL.Path),
			zap.Bool("session", present),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if res.Path != r.URL.Path {
		redirectTo(w, r, res.Path)
		return
	}

	view, err := n.Views.Resolve(r.Context(), res.Route.View)
	if err != nil {
		n.Log.Error("navigation: view load failed",
			zap.String("path", res.Path),
			zap.String("view", res.Route.View),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var data any
	if n.PageData != nil {
		data = n.PageData(r, res.Route)
	}

	// Render into a buffer so a template error does not leave a half page.
	var buf bytes.Buffer
	if err := view.Render(&buf, data); err != nil {
		n.Log.Error("navigation: render failed",
			zap.String("view", res.Route.View),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func redirectTo(w http.ResponseWriter, r *http.Request, to string) {
	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
