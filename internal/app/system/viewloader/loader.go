// Package viewloader defers building page views until they are first needed.
//
// Each view id is backed by a Factory. The first Resolve for an id runs the
// factory; concurrent first calls share that one run. A successful result is
// kept for the life of the Loader. A failed result is not kept, so the next
// Resolve tries again.
package viewloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// View is renderable page content.
type View interface {
	Render(w io.Writer, data any) error
}

// Factory builds a View.
type Factory func(ctx context.Context) (View, error)

var (
	ErrUnknownView = errors.New("viewloader: unknown view")
	ErrNilView     = errors.New("viewloader: factory returned nil view")
)

// Loader resolves view ids to Views, building each at most once.
type Loader struct {
	mu        sync.RWMutex
	factories map[string]Factory
	views     map[string]View
	gens      map[string]uint64 // bumped by Register
	group     singleflight.Group
	log       *zap.Logger
}

// New returns an empty Loader.
func New(logger *zap.Logger) *Loader {
	return &Loader{
		factories: make(map[string]Factory),
		views:     make(map[string]View),
		gens:      make(map[string]uint64),
		log:       logger,
	}
}

// Register binds id to f. Re-registering an id drops any view already built
// for it, and a build still running with the old factory is not kept.
func (l *Loader) Register(id string, f Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factories[id] = f
	l.gens[id]++
	delete(l.views, id)
}

// Loaded reports whether the view for id has been built.
func (l *Loader) Loaded(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.views[id]
	return ok
}

// Resolve returns the View for id, building it on first use.
func (l *Loader) Resolve(ctx context.Context, id string) (View, error) {
	l.mu.RLock()
	v, built := l.views[id]
	f, known := l.factories[id]
	gen := l.gens[id]
	l.mu.RUnlock()

	if built {
		return v, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, id)
	}

	// Keyed by generation so a newly registered factory never joins a flight
	// started with the one it replaced.
	key := id + "#" + strconv.FormatUint(gen, 10)
	out, err, _ := l.group.Do(key, func() (any, error) {
		// Another caller may have finished between our check and Do.
		l.mu.RLock()
		v, built := l.views[id]
		current := l.gens[id] == gen
		l.mu.RUnlock()
		if built && current {
			return v, nil
		}

		start := time.Now()
		v, err := f(ctx)
		if err != nil {
			l.log.Warn("view load failed", zap.String("view", id), zap.Error(err))
			return nil, err
		}
		if v == nil {
			return nil, ErrNilView
		}

		l.mu.Lock()
		current = l.gens[id] == gen
		if current {
			l.views[id] = v
		}
		l.mu.Unlock()
		if !current {
			l.log.Info("view replaced during load; not kept", zap.String("view", id))
			return v, nil
		}

		l.log.Info("view loaded",
			zap.String("view", id),
			zap.Duration("took", time.Since(start)))
		return v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load view %q: %w", id, err)
	}
	return out.(View), nil
}
