// Package views holds the page templates. Each page is parsed only when the
// view loader first asks for it.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dalemusser/bubblemap/internal/app/system/navigation"
	"github.com/dalemusser/bubblemap/internal/app/system/viewloader"
)

//go:embed templates/*.gohtml
var FS embed.FS

const layoutFile = "templates/layout.gohtml"

type page struct {
	t *template.Template
}

func (p page) Render(w io.Writer, data any) error {
	return p.t.ExecuteTemplate(w, "layout", data)
}

// Factory returns a viewloader.Factory that parses templates/<name>.gohtml
// together with the shared layout.
func Factory(name string) viewloader.Factory {
	return func(ctx context.Context) (viewloader.View, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := template.New(name).ParseFS(FS, layoutFile, "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return page{t: t}, nil
	}
}

// Register binds the application's views on l.
func Register(l *viewloader.Loader) {
	l.Register(navigation.ViewLogin, Factory(navigation.ViewLogin))
	l.Register(navigation.ViewMap, Factory(navigation.ViewMap))
}
