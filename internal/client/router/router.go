// Package router maps navigation paths to screens.
//
// Matching is exact: "/order" resolves, "/order/" and "/order?x" do not.
// The home screen is built when the table is created; every other screen is
// built on its first navigation and cached for the life of the process.
// Routing does no access control; screens gate themselves.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/tubeboost/internal/client/views"
	"github.com/dmitrijs2005/tubeboost/internal/logging"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("no such page")

// Loader builds a screen.
type Loader func() (views.View, error)

// Route binds a path to the loader of its screen.
type Route struct {
	Path  string
	Load  Loader
	Eager bool
}

// DefaultRoutes is the client's navigation map.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Load: views.LoadHome, Eager: true},
		{Path: "/login", Load: views.LoadLogin},
		{Path: "/register", Load: views.LoadRegister},
		{Path: "/order", Load: views.LoadOrder},
		{Path: "/admin", Load: views.LoadAdmin},
		{Path: "/seo-class", Load: views.LoadSEO},
	}
}

type Table struct {
	routes  []Route
	loaders map[string]Loader
	log     logging.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]views.View
}

// New builds a table from routes, loading eager routes immediately.
func New(routes []Route, log logging.Logger) (*Table, error) {
	if log == nil {
		log = logging.Nop()
	}

	t := &Table{
		routes:  routes,
		loaders: make(map[string]Loader, len(routes)),
		cache:   make(map[string]views.View, len(routes)),
		log:     log.With("component", "router"),
	}

	for _, r := range routes {
		if _, dup := t.loaders[r.Path]; dup {
			return nil, fmt.Errorf("duplicate route %q", r.Path)
		}
		t.loaders[r.Path] = r.Load

		if r.Eager {
			v, err := r.Load()
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", r.Path, err)
			}
			t.cache[r.Path] = v
		}
	}

	return t, nil
}

// Resolve returns the screen for path. Concurrent first navigations to the
// same path share one load; a failed load is retried on the next call.
func (t *Table) Resolve(ctx context.Context, path string) (views.View, error) {
	load, ok := t.loaders[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	t.mu.RLock()
	v, ok := t.cache[path]
	t.mu.RUnlock()
	if ok {
		return v, nil
	}

	ch := t.group.DoChan(path, func() (any, error) {
		t.mu.RLock()
		v, ok := t.cache[path]
		t.mu.RUnlock()
		if ok {
			return v, nil
		}

		v, err := load()
		if err != nil {
			return nil, err
		}

		t.mu.Lock()
		t.cache[path] = v
		t.mu.Unlock()

		t.log.Debug(ctx, "page loaded", "path", path)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			t.log.Warn(ctx, "page failed to load", "path", path, "error", res.Err)
			return nil, fmt.Errorf("load %s: %w", path, res.Err)
		}
		return res.Val.(views.View), nil
	}
}

// Routes lists the registered paths in declaration order.
func (t *Table) Routes() []string {
	paths := make([]string, 0, len(t.routes))
	for _, r := range t.routes {
		paths = append(paths, r.Path)
	}
	return paths
}

// Loaded reports whether path's screen has been built.
func (t *Table) Loaded(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.cache[path]
	return ok
}
