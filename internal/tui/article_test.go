package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/pkg/domain"
)

func newLoadedArticleModel(t *testing.T, api *fakeAPI, id int64) articleModel {
	t.Helper()
	deps := newTestDeps(api, "tok")
	deps.Session.Refresh(t.Context())
	m := newArticleModel(deps, id)
	m.width = 80
	m.height = 30
	s, _ := m.Update(runCmd(m.Init())[0])
	return s.(articleModel)
}

func TestArticleLoadsArticleAndComments(t *testing.T) {
	api := newFakeAPI()
	api.articles = []domain.Article{testArticle(3, "Ownership")}
	api.comments[3] = []domain.Comment{{ID: 1, Content: "great read", AuthorName: "bob", ArticleID: 3}}

	m := newLoadedArticleModel(t, api, 3)
	view := m.View()

	for _, want := range []string{"Ownership", "body of Ownership", "COMMENTS (1)", "bob", "great read"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestArticleLoadFailureShowsServerMessage(t *testing.T) {
	m := newLoadedArticleModel(t, newFakeAPI(), 404)
	if !strings.Contains(m.View(), "article not found") {
		t.Errorf("expected not-found message, got:\n%s", m.View())
	}
}

func TestArticlePostComment(t *testing.T) {
	api := newFakeAPI()
	api.articles = []domain.Article{testArticle(3, "Ownership")}
	m := newLoadedArticleModel(t, api, 3)

	var s screen = m
	s, _ = s.Update(keyRunes("c"))
	if !s.editing() {
		t.Fatal("expected comment box to take focus")
	}
	s = typeInto(s, "nice")
	s, _ = s.Update(tea.KeyMsg{Type: tea.KeySpace})
	s = typeInto(s, "post")
	s, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a post command")
	}
	s, _ = s.Update(cmd())

	if len(api.posted) != 1 {
		t.Fatalf("posted %d comments, want 1", len(api.posted))
	}
	req := api.posted[0]
	if req.Content != "nice post" || req.ArticleID != 3 || req.UserID != 1 {
		t.Errorf("request = %+v", req)
	}
	am := s.(articleModel)
	if am.composing || am.draft != "" {
		t.Error("comment box should reset after posting")
	}
	if !strings.Contains(am.View(), "nice post") {
		t.Errorf("expected new comment in view:\n%s", am.View())
	}
}

func TestArticleEmptyCommentRejected(t *testing.T) {
	api := newFakeAPI()
	api.articles = []domain.Article{testArticle(3, "Ownership")}
	var s screen = newLoadedArticleModel(t, api, 3)

	s, _ = s.Update(keyRunes("c"))
	s, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty comment must not be sent")
	}
	if s.(articleModel).status == "" {
		t.Error("expected a validation message")
	}
}

func TestArticleCopyAndOpen(t *testing.T) {
	var copied, opened string
	oldCopy, oldOpen := writeClipboard, openURL
	writeClipboard = func(s string) error { copied = s; return nil }
	openURL = func(u string) error { opened = u; return errors.New("no browser") }
	t.Cleanup(func() { writeClipboard, openURL = oldCopy, oldOpen })

	api := newFakeAPI()
	api.articles = []domain.Article{testArticle(3, "Ownership")}
	m := newLoadedArticleModel(t, api, 3)

	_, cmd := m.Update(keyRunes("y"))
	msg := cmd()
	if !strings.HasPrefix(copied, "Ownership\n\n") {
		t.Errorf("clipboard = %q", copied)
	}
	_, cmd = m.Update(msg)
	if tm, ok := cmd().(toastMsg); !ok || tm.isErr {
		t.Errorf("expected success toast, got %+v", tm)
	}

	_, cmd = m.Update(keyRunes("o"))
	msg = cmd()
	if opened != "http://web.test/article/3" {
		t.Errorf("opened = %q", opened)
	}
	_, cmd = m.Update(msg)
	if tm, ok := cmd().(toastMsg); !ok || !tm.isErr {
		t.Errorf("expected error toast, got %+v", tm)
	}
}

func TestArticleEscGoesBack(t *testing.T) {
	api := newFakeAPI()
	api.articles = []domain.Article{testArticle(3, "Ownership")}
	m := newLoadedArticleModel(t, api, 3)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if nav, ok := cmd().(navigateMsg); !ok || nav.path != router.ArticlesPath {
		t.Errorf("navigate = %+v", nav)
	}
}
