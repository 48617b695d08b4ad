// Package navigation owns the page route table: which path shows which view,
// which paths redirect, and which pages are for signed-in users or guests only.
package navigation

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// CatchAll matches every path that no earlier route matched.
const CatchAll = "/*"

// Route names and view ids used by the default table.
const (
	RouteLogin = "login"
	RouteMap   = "map"

	ViewLogin = "login"
	ViewMap   = "map"
)

// Meta carries the guard flags of a route. At most one of them is set.
type Meta struct {
	RequiresAuth bool
	GuestOnly    bool
}

// Route maps a path pattern to either a view or a redirect target.
type Route struct {
	Path     string // exact path, or a prefix pattern ending in "/*"
	Name     string // optional; guard redirects address routes by name
	Redirect string // unconditional redirect target path
	View     string // view id resolved through the ViewLoader
	Meta     Meta
}

// IsRedirect reports whether the route only redirects.
func (rt Route) IsRedirect() bool { return rt.Redirect != "" }

var (
	ErrInvalidRoute  = errors.New("navigation: invalid route")
	ErrDuplicateName = errors.New("navigation: duplicate route name")
)

// Table is an ordered, immutable list of routes. First match wins.
type Table struct {
	routes []Route
	byName map[string]int
}

// NewTable validates routes and builds a Table.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{
		routes: make([]Route, 0, len(routes)),
		byName: make(map[string]int, len(routes)),
	}
	for i, rt := range routes {
		if !strings.HasPrefix(rt.Path, "/") {
			return nil, fmt.Errorf("%w: route %d: path %q must start with /", ErrInvalidRoute, i, rt.Path)
		}
		if (rt.Redirect == "") == (rt.View == "") {
			return nil, fmt.Errorf("%w: route %q: exactly one of view or redirect is required", ErrInvalidRoute, rt.Path)
		}
		if rt.Meta.RequiresAuth && rt.Meta.GuestOnly {
			return nil, fmt.Errorf("%w: route %q: requiresAuth and guestOnly are exclusive", ErrInvalidRoute, rt.Path)
		}
		if rt.Redirect != "" && (!strings.HasPrefix(rt.Redirect, "/") || isPattern(rt.Redirect)) {
			return nil, fmt.Errorf("%w: route %q: redirect %q must be a concrete path", ErrInvalidRoute, rt.Path, rt.Redirect)
		}
		if rt.Name != "" {
			if isPattern(rt.Path) {
				return nil, fmt.Errorf("%w: route %q: named routes need a concrete path", ErrInvalidRoute, rt.Path)
			}
			if _, dup := t.byName[rt.Name]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, rt.Name)
			}
			t.byName[rt.Name] = len(t.routes)
		}
		t.routes = append(t.routes, rt)
	}
	return t, nil
}

// DefaultRoutes is the application's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Redirect: "/map"},
		{Path: "/login", Name: RouteLogin, View: ViewLogin, Meta: Meta{GuestOnly: true}},
		{Path: "/map", Name: RouteMap, View: ViewMap, Meta: Meta{RequiresAuth: true}},
		{Path: CatchAll, Redirect: "/map"},
	}
}

// DefaultTable builds the application's route table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultRoutes()...)
	if err != nil {
		// The default routes are static; a failure here is a programming error.
		panic(err)
	}
	return t
}

// Routes returns a copy of the table's routes in evaluation order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Match returns the first route whose pattern matches p.
func (t *Table) Match(p string) (Route, bool) {
	p = CleanPath(p)
	for _, rt := range t.routes {
		if matches(rt.Path, p) {
			return rt, true
		}
	}
	return Route{}, false
}

// ByName looks up a named route.
func (t *Table) ByName(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// CleanPath normalizes a request path for matching.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

func isPattern(p string) bool {
	return strings.HasSuffix(p, "/*")
}

func matches(pattern, p string) bool {
	if !isPattern(pattern) {
		return pattern == p
	}
	prefix := strings.TrimSuffix(pattern, "*")
	return p == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(p, prefix)
}
