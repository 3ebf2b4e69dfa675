package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/mdd/internal/router"
)

func newTestApp(api *fakeAPI, token string) App {
	a := NewApp(newTestDeps(api, token), router.HomePath)
	a.width = 100
	a.height = 40
	return a
}

func step(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

// goTo performs a full guarded navigation and applies the result.
func goTo(t *testing.T, a App, path string) App {
	t.Helper()
	a, _ = step(t, a, a.navigate(path, nil)())
	return a
}

// drive feeds every message produced by cmd back into the app, following
// navigation requests, until no commands remain.
func drive(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		var next []tea.Cmd
		for _, msg := range runCmd(cmd) {
			if _, tick := msg.(shimmerTickMsg); tick {
				continue
			}
			var c tea.Cmd
			a, c = step(t, a, msg)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return a
}

func TestAppProtectedRouteWithValidToken(t *testing.T) {
	a := newTestApp(newFakeAPI(), "tok")

	a = goTo(t, a, router.ArticlesPath)

	if a.loc.Route != router.Articles {
		t.Fatalf("route = %q, want %q", a.loc.Route, router.Articles)
	}
	if !a.deps.Session.IsAuthenticated() {
		t.Error("guard refresh should have authenticated the session")
	}
}

func TestAppProtectedRouteBouncesHomeWithReturnURL(t *testing.T) {
	a := newTestApp(newFakeAPI(), "")

	a = goTo(t, a, router.ThemesPath)

	if a.loc.Route != router.Home {
		t.Fatalf("route = %q, want home", a.loc.Route)
	}
	if got := router.ReturnURL(a.loc); got != router.ThemesPath {
		t.Errorf("returnUrl = %q, want %q", got, router.ThemesPath)
	}
	if view := a.View(); !strings.Contains(view, router.ThemesPath) {
		t.Errorf("expected home to mention the bounced path, got:\n%s", view)
	}
}

func TestAppTabsFollowAuthStream(t *testing.T) {
	a := newTestApp(newFakeAPI(), "")

	view := a.View()
	if !strings.Contains(view, "Log in") || strings.Contains(view, "Themes") {
		t.Errorf("anonymous tabs wrong:\n%s", view)
	}

	a, cmd := step(t, a, authChangedMsg(true))
	if cmd == nil {
		t.Error("expected the app to keep watching the auth stream")
	}
	view = a.View()
	if !strings.Contains(view, "Themes") || strings.Contains(view, "Register") {
		t.Errorf("signed-in tabs wrong:\n%s", view)
	}
}

func TestAppWatchAuthDeliversSessionChanges(t *testing.T) {
	api := newFakeAPI()
	a := newTestApp(api, "")

	// The subscription is primed with the current value.
	if msg := a.watchAuth()(); msg != authChangedMsg(false) {
		t.Fatalf("first value = %v, want false", msg)
	}
	if err := a.deps.Session.LogIn(t.Context(), "tok"); err != nil {
		t.Fatal(err)
	}
	if msg := a.watchAuth()(); msg != authChangedMsg(true) {
		t.Errorf("after login = %v, want true", msg)
	}
}

func TestAppTabKeyNavigates(t *testing.T) {
	a := newTestApp(newFakeAPI(), "tok")
	a, _ = step(t, a, authChangedMsg(true))

	a, cmd := step(t, a, keyRunes("2"))
	if cmd == nil {
		t.Fatal("expected a navigation command for tab 2")
	}
	a, _ = step(t, a, cmd())
	if a.loc.Route != router.Themes {
		t.Errorf("route = %q, want themes", a.loc.Route)
	}

	// Pressing the active tab again does nothing.
	_, cmd = step(t, a, keyRunes("2"))
	if cmd != nil {
		t.Error("expected no command when the tab is already active")
	}
}

func TestAppQuit(t *testing.T) {
	a := newTestApp(newFakeAPI(), "")

	_, cmd := step(t, a, keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppQTypesIntoForms(t *testing.T) {
	a := newTestApp(newFakeAPI(), "")
	a = goTo(t, a, router.LoginPath)

	a, _ = step(t, a, keyRunes("q"))
	lm := a.screen.(loginModel)
	if lm.form.fields[loginIdentifier].value != "q" {
		t.Errorf("expected 'q' typed into the form, got %q", lm.form.fields[loginIdentifier].value)
	}

	_, cmd := step(t, a, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c must quit even while editing")
	}
}

func TestAppUnknownPathShowsToast(t *testing.T) {
	a := newTestApp(newFakeAPI(), "")

	a = goTo(t, a, "/nowhere")

	if !strings.Contains(a.View(), "no such page") {
		t.Errorf("expected not-found toast, got:\n%s", a.View())
	}
	a, _ = step(t, a, keyRunes("x"))
	if strings.Contains(a.View(), "no such page") {
		t.Error("toast should clear on the next key")
	}
}

func TestAppLoginResumesReturnURL(t *testing.T) {
	api := newFakeAPI()
	a := newTestApp(api, "")

	a = goTo(t, a, router.ThemesPath)
	a, cmd := step(t, a, keyRunes("l"))
	a = drive(t, a, cmd)
	if a.loc.Route != router.Login {
		t.Fatalf("route = %q, want login", a.loc.Route)
	}

	for _, r := range "ada" {
		a, _ = step(t, a, keyRunes(string(r)))
	}
	a, _ = step(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	for _, r := range "Secret123" {
		a, _ = step(t, a, keyRunes(string(r)))
	}
	a, cmd = step(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	a = drive(t, a, cmd)

	if a.loc.Route != router.Themes {
		t.Fatalf("route = %q, want themes after login", a.loc.Route)
	}
	snap := a.deps.Session.Snapshot()
	if !snap.Authenticated || snap.User == nil || snap.User.Username != "ada" {
		t.Errorf("session after login = %+v", snap)
	}
}

func TestAppLoggedInUserCannotOpenLogin(t *testing.T) {
	a := newTestApp(newFakeAPI(), "tok")
	a.deps.Session.Refresh(t.Context())

	a = goTo(t, a, router.LoginPath)

	if a.loc.Route != router.Home {
		t.Errorf("route = %q, want home", a.loc.Route)
	}
	if router.ReturnURL(a.loc) != "" {
		t.Error("unauthenticated-only redirect must not carry a return path")
	}
}

func TestAppHeaderShowsUser(t *testing.T) {
	a := newTestApp(newFakeAPI(), "tok")
	a.deps.Session.Refresh(t.Context())
	a, _ = step(t, a, authChangedMsg(true))

	if view := a.View(); !strings.Contains(view, "@ada") {
		t.Errorf("expected username in header, got:\n%s", view)
	}
}

func TestAppLayoutFitsTerminal(t *testing.T) {
	api := newFakeAPI()
	for i := 1; i <= 40; i++ {
		api.articles = append(api.articles, testArticle(int64(i), fmt.Sprintf("Article %d", i)))
	}
	a := newTestApp(api, "tok")
	a, _ = step(t, a, tea.WindowSizeMsg{Width: 80, Height: 24})
	a = goTo(t, a, router.ArticlesPath)
	a = drive(t, a, a.screen.Init())

	if lines := strings.Count(a.View(), "\n") + 1; lines > 24 {
		t.Errorf("view has %d lines, terminal has 24", lines)
	}
}
