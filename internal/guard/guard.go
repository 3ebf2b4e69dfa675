// Package guard decides whether a navigation may proceed based on the
// session's authentication flag.
package guard

import (
	"context"

	"github.com/sirupsen/logrus"
)

// HomePath is where denied navigations are sent.
const HomePath = "/home"

// ReturnURLParam carries the originally requested path on a redirect home.
const ReturnURLParam = "returnUrl"

// Guard is evaluated before a navigation completes. It may block while it
// resolves. A false result means the guard has already requested a redirect.
type Guard interface {
	CanActivate(ctx context.Context, requestedPath string) bool
}

// Navigator receives redirect requests from denying guards.
type Navigator interface {
	NavigateTo(path string, params map[string]string)
}

// Session is the part of the session coordinator the guards read.
type Session interface {
	Refresh(ctx context.Context)
	IsAuthenticated() bool
}

// Func adapts a plain function to Guard.
type Func func(ctx context.Context, requestedPath string) bool

func (f Func) CanActivate(ctx context.Context, requestedPath string) bool {
	return f(ctx, requestedPath)
}

type authenticated struct {
	session Session
	nav     Navigator
	log     logrus.FieldLogger
}

// Authenticated allows navigation only for a logged-in user. It always
// completes a refresh first so an expired token is caught before access is
// granted. Denied navigations go home with the requested path attached.
func Authenticated(session Session, nav Navigator, log logrus.FieldLogger) Guard {
	return &authenticated{session: session, nav: nav, log: fieldLogger(log, "authenticated")}
}

func (g *authenticated) CanActivate(ctx context.Context, requestedPath string) bool {
	g.session.Refresh(ctx)
	if g.session.IsAuthenticated() {
		return true
	}
	g.log.WithField("path", requestedPath).Debug("denied, not authenticated")
	g.nav.NavigateTo(HomePath, map[string]string{ReturnURLParam: requestedPath})
	return false
}

type unauthenticated struct {
	session Session
	nav     Navigator
	log     logrus.FieldLogger
}

// Unauthenticated allows navigation only when nobody is logged in. It reads
// the cached flag without refreshing. Denied navigations go home with no
// return path.
func Unauthenticated(session Session, nav Navigator, log logrus.FieldLogger) Guard {
	return &unauthenticated{session: session, nav: nav, log: fieldLogger(log, "unauthenticated")}
}

func (g *unauthenticated) CanActivate(_ context.Context, requestedPath string) bool {
	if !g.session.IsAuthenticated() {
		return true
	}
	g.log.WithField("path", requestedPath).Debug("denied, already authenticated")
	g.nav.NavigateTo(HomePath, nil)
	return false
}

func fieldLogger(log logrus.FieldLogger, kind string) logrus.FieldLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithFields(logrus.Fields{"component": "guard", "guard": kind})
}
