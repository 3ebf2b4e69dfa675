// Package router maps paths to screens and runs route guards before a
// navigation completes.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/naveenspark/mdd/internal/guard"
)

var (
	// ErrNotFound is returned for a path that matches no route.
	ErrNotFound = errors.New("route not found")
	// ErrDenied is returned when a guard refused without asking for a redirect.
	ErrDenied = errors.New("navigation denied")
	// ErrTooManyRedirects is returned when guards keep redirecting.
	ErrTooManyRedirects = errors.New("too many redirects")
)

const maxRedirects = 5

// Route binds a path pattern to a screen name. Segments starting with ':'
// capture a parameter.
type Route struct {
	Pattern string
	Name    string
	Guards  []guard.Guard
}

// Location is the result of a completed navigation.
type Location struct {
	Path   string
	Route  string
	Params map[string]string
	Query  url.Values
}

// Param returns a captured path parameter.
func (l Location) Param(name string) string {
	return l.Params[name]
}

// String renders the location back into a path with its query.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// ReturnURL is the path a denied navigation wanted, if any.
func ReturnURL(l Location) string {
	return l.Query.Get(guard.ReturnURLParam)
}

type pending struct {
	path   string
	params map[string]string
}

// Router resolves paths and evaluates guards. Navigations are serialized.
// Guards redirect by calling NavigateTo on the router that evaluates them.
type Router struct {
	log logrus.FieldLogger

	mu     sync.RWMutex
	routes []Route

	navMu sync.Mutex

	redirectMu sync.Mutex
	redirect   *pending
}

// New returns a router with no routes.
func New(log logrus.FieldLogger) *Router {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Router{log: log.WithField("component", "router")}
}

// Add registers routes. Earlier routes win when two patterns match.
func (r *Router) Add(routes ...Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, routes...)
}

// NavigateTo records a redirect for the navigation in progress.
func (r *Router) NavigateTo(path string, params map[string]string) {
	r.redirectMu.Lock()
	defer r.redirectMu.Unlock()
	r.redirect = &pending{path: path, params: params}
}

func (r *Router) takeRedirect() *pending {
	r.redirectMu.Lock()
	defer r.redirectMu.Unlock()
	p := r.redirect
	r.redirect = nil
	return p
}

// Navigate resolves path (which may carry a query string) plus params as
// extra query values, then runs the route's guards in order. A denying
// guard's redirect is followed; the returned Location is where navigation
// actually ended.
func (r *Router) Navigate(ctx context.Context, path string, params map[string]string) (Location, error) {
	r.navMu.Lock()
	defer r.navMu.Unlock()

	target := withParams(path, params)
	for hop := 0; hop <= maxRedirects; hop++ {
		loc, route, err := r.resolve(target)
		if err != nil {
			return Location{}, err
		}

		next, denied := r.runGuards(ctx, route, loc.String())
		if !denied {
			r.log.WithFields(logrus.Fields{"path": loc.Path, "route": loc.Route}).Debug("navigated")
			return loc, nil
		}
		if next == nil {
			return Location{}, fmt.Errorf("router.Navigate %s: %w", loc.Path, ErrDenied)
		}
		r.log.WithFields(logrus.Fields{"from": loc.Path, "to": next.path}).Debug("redirected")
		target = withParams(next.path, next.params)
	}
	return Location{}, fmt.Errorf("router.Navigate %s: %w", path, ErrTooManyRedirects)
}

func (r *Router) runGuards(ctx context.Context, route Route, requested string) (*pending, bool) {
	for _, g := range route.Guards {
		r.takeRedirect()
		if !g.CanActivate(ctx, requested) {
			return r.takeRedirect(), true
		}
	}
	return nil, false
}

// Match resolves a path without running guards.
func (r *Router) Match(path string) (Location, error) {
	loc, _, err := r.resolve(path)
	return loc, err
}

func (r *Router) resolve(target string) (Location, Route, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Location{}, Route{}, fmt.Errorf("router: parse %q: %w", target, err)
	}
	clean := "/" + strings.Trim(u.Path, "/")

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, route := range r.routes {
		if params, ok := match(route.Pattern, clean); ok {
			return Location{Path: clean, Route: route.Name, Params: params, Query: u.Query()}, route, nil
		}
	}
	return Location{}, Route{}, fmt.Errorf("router: %s: %w", clean, ErrNotFound)
}

func match(pattern, path string) (map[string]string, bool) {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range want {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if got[i] == "" {
				return nil, false
			}
			params[name] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

func withParams(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	q := url.Values{}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		q, _ = url.ParseQuery(path[i+1:])
		path = path[:i]
	}
	for k, v := range params {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}
