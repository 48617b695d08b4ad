// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/bubblemap/internal/app/system/auth"
	"github.com/dalemusser/bubblemap/internal/app/system/navigation"
)

// maxErrorLen caps the ?error= message echoed back on a page.
const maxErrorLen = 200

// Page is the view model every page template receives.
type Page struct {
	Title       string
	CurrentPath string

	// User context (from auth middleware)
	IsLoggedIn bool
	UserID     string
	UserName   string

	// Error is a one-shot message carried in the ?error= query parameter.
	Error string
}

var titles = map[string]string{
	navigation.RouteLogin: "Sign in",
	navigation.RouteMap:   "Map",
}

// New builds the Page for a route. It matches navigation.Navigator.PageData.
func New(r *http.Request, route navigation.Route) any {
	return Build(r, route)
}

// Build is New with a concrete return type.
func Build(r *http.Request, route navigation.Route) Page {
	p := Page{
		Title:       titles[route.Name],
		CurrentPath: route.Path,
	}
	if p.Title == "" {
		p.Title = "Bubble Map"
	}
	if u, ok := auth.CurrentUser(r); ok {
		p.IsLoggedIn = true
		p.UserID = u.ID
		p.UserName = u.Name
	}
	msg := strings.TrimSpace(r.URL.Query().Get("error"))
	p.Error = truncate(msg, maxErrorLen)
	return p
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
