package navigation_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/bubblemap/internal/app/system/navigation"
)

func TestDefaultTable_Match(t *testing.T) {
	table := navigation.DefaultTable()

	tests := []struct {
		path     string
		wantPath string
	}{
		{"/", "/"},
		{"/login", "/login"},
		{"/login/", "/login"},
		{"/map", "/map"},
		{"//map", "/map"},
		{"/unknown/path", navigation.CatchAll},
		{"/maps", navigation.CatchAll},
		{"", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rt, ok := table.Match(tt.path)
			if !ok {
				t.Fatalf("Match(%q) found nothing", tt.path)
			}
			if rt.Path != tt.wantPath {
				t.Errorf("Match(%q) = %q, want %q", tt.path, rt.Path, tt.wantPath)
			}
		})
	}
}

func TestDefaultTable_Entries(t *testing.T) {
	table := navigation.DefaultTable()

	login, ok := table.ByName(navigation.RouteLogin)
	if !ok {
		t.Fatal("login route missing")
	}
	if login.Path != "/login" || !login.Meta.GuestOnly || login.Meta.RequiresAuth {
		t.Errorf("unexpected login route: %+v", login)
	}

	m, ok := table.ByName(navigation.RouteMap)
	if !ok {
		t.Fatal("map route missing")
	}
	if m.Path != "/map" || !m.Meta.RequiresAuth || m.Meta.GuestOnly {
		t.Errorf("unexpected map route: %+v", m)
	}

	if _, ok := table.ByName("nope"); ok {
		t.Error("expected unknown name to miss")
	}

	routes := table.Routes()
	if len(routes) != 4 {
		t.Fatalf("expected 4 routes, got %d", len(routes))
	}
	if routes[0].Redirect != "/map" || routes[3].Redirect != "/map" {
		t.Errorf("root and catch-all should redirect to /map: %+v", routes)
	}
}

func TestMatch_PrefixPattern(t *testing.T) {
	table, err := navigation.NewTable(
		navigation.Route{Path: "/docs/*", View: "docs"},
		navigation.Route{Path: "/docsx", View: "other"},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	for _, p := range []string{"/docs", "/docs/", "/docs/a/b"} {
		if rt, ok := table.Match(p); !ok || rt.View != "docs" {
			t.Errorf("Match(%q) = %+v, %v; want docs", p, rt, ok)
		}
	}
	if rt, ok := table.Match("/docsx"); !ok || rt.View != "other" {
		t.Errorf("Match(/docsx) = %+v, %v; want other", rt, ok)
	}
	if _, ok := table.Match("/elsewhere"); ok {
		t.Error("expected no match without a catch-all")
	}
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name   string
		routes []navigation.Route
		want   error
	}{
		{"relative path", []navigation.Route{{Path: "map", View: "map"}}, navigation.ErrInvalidRoute},
		{"neither view nor redirect", []navigation.Route{{Path: "/map"}}, navigation.ErrInvalidRoute},
		{"both view and redirect", []navigation.Route{{Path: "/map", View: "map", Redirect: "/x"}}, navigation.ErrInvalidRoute},
		{"both flags", []navigation.Route{{Path: "/map", View: "map", Meta: navigation.Meta{RequiresAuth: true, GuestOnly: true}}}, navigation.ErrInvalidRoute},
		{"redirect to pattern", []navigation.Route{{Path: "/", Redirect: "/*"}}, navigation.ErrInvalidRoute},
		{"named pattern", []navigation.Route{{Path: "/*", Name: "all", View: "x"}}, navigation.ErrInvalidRoute},
		{"duplicate name", []navigation.Route{
			{Path: "/a", Name: "a", View: "a"},
			{Path: "/b", Name: "a", View: "b"},
		}, navigation.ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := navigation.NewTable(tt.routes...)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewTable error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		"":          "/",
		"/":         "/",
		"map":       "/map",
		"/map/":     "/map",
		"/a/../map": "/map",
	}
	for in, want := range tests {
		if got := navigation.CleanPath(in); got != want {
			t.Errorf("CleanPath(%q) = %q, want %q", in, got, want)
		}
	}
}
