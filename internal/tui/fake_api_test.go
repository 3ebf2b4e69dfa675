package tui

import (
	"context"
	"errors"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/internal/session"
	"github.com/naveenspark/mdd/internal/tokenstore"
	"github.com/naveenspark/mdd/pkg/client"
	"github.com/naveenspark/mdd/pkg/domain"
)

var errFake = errors.New("fake failure")

// fakeAPI is an in-memory backend. It satisfies both the screens' API and
// the session coordinator's user and theme clients.
type fakeAPI struct {
	mu sync.Mutex

	token    string
	loginErr error
	me       *domain.User
	meErr    error
	themes   []domain.Theme
	articles []domain.Article
	comments map[int64][]domain.Comment
	fail     bool

	registered []client.RegisterRequest
	created    []client.CreateArticleRequest
	posted     []client.CreateCommentRequest
	updated    []client.UpdateUserRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		token: "tok",
		me: &domain.User{ID: 1, Username: "ada", Email: "ada@example.com",
			SubscribedThemes: []domain.Theme{{ID: 2}}},
		themes: []domain.Theme{
			{ID: 1, Title: "Go", Description: "gophers"},
			{ID: 2, Title: "Rust", Description: "crabs"},
		},
		comments: map[int64][]domain.Comment{},
	}
}

func (f *fakeAPI) err() error {
	if f.fail {
		return errFake
	}
	return nil
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAPI) Register(_ context.Context, req client.RegisterRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, req)
	return f.err()
}

func (f *fakeAPI) GetMe(context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := *f.me
	return &u, nil
}

func (f *fakeAPI) UpdateMe(_ context.Context, req client.UpdateUserRequest) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, req)
	if err := f.err(); err != nil {
		return nil, err
	}
	u := *f.me
	u.Username, u.Email = req.Username, req.Email
	f.me = &u
	return &u, nil
}

func (f *fakeAPI) ListThemes(context.Context) ([]domain.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.themes, f.err()
}

func (f *fakeAPI) Subscribe(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	f.me.SubscribedThemes = append(f.me.SubscribedThemes, domain.Theme{ID: id})
	return nil
}

func (f *fakeAPI) Unsubscribe(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	kept := []domain.Theme{}
	for _, t := range f.me.SubscribedThemes {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.me.SubscribedThemes = kept
	return nil
}

func (f *fakeAPI) ListArticles(context.Context) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.articles, f.err()
}

func (f *fakeAPI) GetArticle(_ context.Context, id int64) (*domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return nil, err
	}
	for _, a := range f.articles {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, &client.HTTPError{StatusCode: 404, Message: "article not found"}
}

func (f *fakeAPI) CreateArticle(_ context.Context, req client.CreateArticleRequest) (*domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if err := f.err(); err != nil {
		return nil, err
	}
	a := domain.Article{ID: int64(len(f.articles) + 1), Title: req.Title, Content: req.Content}
	f.articles = append(f.articles, a)
	return &a, nil
}

func (f *fakeAPI) ListComments(_ context.Context, id int64) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comments[id], f.err()
}

func (f *fakeAPI) CreateComment(_ context.Context, req client.CreateCommentRequest) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, req)
	if err := f.err(); err != nil {
		return nil, err
	}
	c := domain.Comment{ID: 99, Content: req.Content, UserID: req.UserID, ArticleID: req.ArticleID, AuthorName: "ada"}
	f.comments[req.ArticleID] = append(f.comments[req.ArticleID], c)
	return &c, nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestDeps wires a real coordinator and router over the fake backend.
// token is the credential already stored at startup ("" for none).
func newTestDeps(api *fakeAPI, token string) Deps {
	log := quietLogger()
	sess := session.New(tokenstore.NewMemoryStore(token), api, api, log)
	r := router.New(log)
	r.Add(router.AppRoutes(sess, r, log)...)
	return Deps{
		API:     api,
		Session: sess,
		Router:  r,
		WebURL:  "http://web.test",
		Version: "test",
		Log:     log,
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeInto sends each rune of s as its own key press.
func typeInto(s screen, text string) screen {
	for _, r := range text {
		s, _ = s.Update(keyRunes(string(r)))
	}
	return s
}

// runCmd executes cmd and every command it batches, returning the messages
// in order. Tick commands are not run.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
