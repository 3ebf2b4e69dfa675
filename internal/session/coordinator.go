// Package session keeps the process-wide answer to "who is logged in, and
// what do they follow", refreshed on demand from the remote API.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/mdd/pkg/client"
	"github.com/naveenspark/mdd/pkg/domain"
)

// TokenStore is the persisted credential the coordinator reads and clears.
type TokenStore interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// UserClient fetches the account behind the stored credential.
type UserClient interface {
	GetMe(ctx context.Context) (*domain.User, error)
}

// ThemeClient fetches the full theme catalog.
type ThemeClient interface {
	ListThemes(ctx context.Context) ([]domain.Theme, error)
}

// IsUnauthorized classifies a UserClient error as a rejected credential.
// Overridable for collaborators that do not speak HTTP.
type IsUnauthorized func(error) bool

// State is one consistent snapshot of the session.
type State struct {
	User             *domain.User
	SubscribedThemes []domain.Theme
	Authenticated    bool
}

// Coordinator owns the session state. All mutations replace the snapshot
// under one lock and then publish, so observers never see a half-applied
// change. Concurrent refreshes race; whichever completes last wins.
type Coordinator struct {
	tokens         TokenStore
	users          UserClient
	themes         ThemeClient
	isUnauthorized IsUnauthorized
	log            logrus.FieldLogger

	mu    sync.Mutex
	state State

	user          *Value[*domain.User]
	subscribed    *Value[[]domain.Theme]
	authenticated *Value[bool]
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithUnauthorized replaces the default client.IsUnauthorized classifier.
func WithUnauthorized(fn IsUnauthorized) Option {
	return func(c *Coordinator) { c.isUnauthorized = fn }
}

// New returns an empty, unauthenticated coordinator. Nothing is fetched
// until Refresh or LogIn is called.
func New(tokens TokenStore, users UserClient, themes ThemeClient, log logrus.FieldLogger, opts ...Option) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Coordinator{
		tokens:         tokens,
		users:          users,
		themes:         themes,
		isUnauthorized: client.IsUnauthorized,
		log:            log.WithField("component", "session"),
		state:          State{SubscribedThemes: []domain.Theme{}},
		user:           NewValue[*domain.User](nil),
		subscribed:     NewValue([]domain.Theme{}),
		authenticated:  NewValue(false),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// User streams the current user (nil when absent).
func (c *Coordinator) User() *Value[*domain.User] { return c.user }

// SubscribedThemes streams the current user's subscribed themes in catalog order.
func (c *Coordinator) SubscribedThemes() *Value[[]domain.Theme] { return c.subscribed }

// Authenticated streams the authentication flag.
func (c *Coordinator) Authenticated() *Value[bool] { return c.authenticated }

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAuthenticated is a single-shot read of the flag.
func (c *Coordinator) IsAuthenticated() bool {
	return c.Snapshot().Authenticated
}

// LogIn stores a token the auth endpoint already accepted, marks the session
// authenticated right away and then refreshes the user. The returned error
// is only a token persistence failure, in which case nothing changed.
func (c *Coordinator) LogIn(ctx context.Context, token string) error {
	if err := c.tokens.Set(token); err != nil {
		return fmt.Errorf("session.LogIn: %w", err)
	}
	c.log.Info("logged in")
	c.update(func(s *State) { s.Authenticated = true })
	c.Refresh(ctx)
	return nil
}

// LogOut forgets the token and resets the whole state. The state is reset
// even when the store fails to clear; that error is returned.
func (c *Coordinator) LogOut() error {
	err := c.tokens.Clear()
	c.update(func(s *State) {
		*s = State{SubscribedThemes: []domain.Theme{}}
	})
	c.log.Info("logged out")
	if err != nil {
		return fmt.Errorf("session.LogOut: %w", err)
	}
	return nil
}

// Refresh reloads the user behind the stored token. It never fails:
//   - no token: nothing changes;
//   - credential rejected: the token is cleared and the flag drops, the last
//     known user and themes stay;
//   - any other error: nothing changes, the error is logged;
//   - success: user, derived themes and flag are committed together. If only
//     the theme catalog fails, the previous themes are kept.
func (c *Coordinator) Refresh(ctx context.Context) {
	if _, ok := c.tokens.Get(); !ok {
		return
	}

	user, err := c.users.GetMe(ctx)
	if err != nil {
		if c.isUnauthorized(err) {
			c.log.WithError(err).Warn("credential rejected, clearing token")
			if clearErr := c.tokens.Clear(); clearErr != nil {
				c.log.WithError(clearErr).Error("clear token")
			}
			c.update(func(s *State) { s.Authenticated = false })
			return
		}
		c.log.WithError(err).Warn("refresh failed, keeping session state")
		return
	}

	catalog, err := c.themes.ListThemes(ctx)
	if err != nil {
		c.log.WithError(err).Warn("load theme catalog failed, keeping subscribed themes")
		c.update(func(s *State) {
			s.User = user
			s.Authenticated = true
		})
		return
	}

	subscribed := DeriveSubscribed(catalog, user)
	c.log.WithFields(logrus.Fields{"user_id": user.ID, "themes": len(subscribed)}).Debug("session refreshed")
	c.update(func(s *State) {
		s.User = user
		s.SubscribedThemes = subscribed
		s.Authenticated = true
	})
}

// UpdateUser replaces the current user right away, then re-derives the
// subscribed themes from a freshly fetched catalog. The flag is untouched.
// Catalog errors are logged and leave the themes as they were.
func (c *Coordinator) UpdateUser(ctx context.Context, user *domain.User) {
	c.update(func(s *State) { s.User = user })

	catalog, err := c.themes.ListThemes(ctx)
	if err != nil {
		c.log.WithError(err).Warn("load theme catalog failed after user update")
		return
	}
	subscribed := DeriveSubscribed(catalog, user)
	c.update(func(s *State) { s.SubscribedThemes = subscribed })
}

// update applies fn to a copy of the state, commits it and publishes the
// three streams while still holding the lock, so publication order matches
// commit order.
func (c *Coordinator) update(fn func(s *State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	fn(&next)
	if next.SubscribedThemes == nil {
		next.SubscribedThemes = []domain.Theme{}
	}
	c.state = next

	c.user.Set(next.User)
	c.subscribed.Set(next.SubscribedThemes)
	c.authenticated.Set(next.Authenticated)
}

// DeriveSubscribed keeps the catalog themes whose id appears in the user's
// subscriptions, in catalog order.
func DeriveSubscribed(catalog []domain.Theme, user *domain.User) []domain.Theme {
	out := []domain.Theme{}
	if user == nil {
		return out
	}
	wanted := make(map[int64]struct{}, len(user.SubscribedThemes))
	for _, id := range xslices.Map(user.SubscribedThemes, func(t domain.Theme) int64 { return t.ID }) {
		wanted[id] = struct{}{}
	}
	for _, t := range catalog {
		if _, ok := wanted[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}
