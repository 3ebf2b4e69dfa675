package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/mdd/internal/guard"
	"github.com/naveenspark/mdd/internal/router"
)

func newTestHomeModel(loc router.Location) homeModel {
	m := newHomeModel(Deps{}, loc)
	m.width = 80
	m.height = 24
	return m
}

func TestHomeRendersBannerAndActions(t *testing.T) {
	view := newTestHomeModel(router.Location{}).View()
	for _, want := range []string{"M", "D", "log in", "register"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in home view, got:\n%s", want, view)
		}
	}
	if strings.Contains(view, "continue to") {
		t.Error("no return path expected without a bounced navigation")
	}
}

func TestHomeLoginCarriesReturnURL(t *testing.T) {
	loc := router.Location{Path: "/home", Route: router.Home}
	loc.Query = map[string][]string{guard.ReturnURLParam: {"/me"}}
	m := newTestHomeModel(loc)

	if !strings.Contains(m.View(), "/me") {
		t.Errorf("expected bounced path in view, got:\n%s", m.View())
	}

	_, cmd := m.Update(keyRunes("l"))
	nav, ok := cmd().(navigateMsg)
	if !ok {
		t.Fatal("expected navigateMsg")
	}
	if nav.path != router.LoginPath || nav.params[guard.ReturnURLParam] != "/me" {
		t.Errorf("navigate = %+v", nav)
	}
}

func TestHomeRegisterKey(t *testing.T) {
	m := newTestHomeModel(router.Location{})
	_, cmd := m.Update(keyRunes("r"))
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.path != router.RegisterPath || nav.params != nil {
		t.Errorf("navigate = %+v", nav)
	}
}

func TestHomeShimmerFrameIncrements(t *testing.T) {
	m := newTestHomeModel(router.Location{})
	s, cmd := m.Update(shimmerTickMsg{})
	if s.(homeModel).frame != 1 {
		t.Errorf("frame = %d, want 1", s.(homeModel).frame)
	}
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
}

func TestHomeIgnoresOtherKeys(t *testing.T) {
	m := newTestHomeModel(router.Location{})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab}); cmd != nil {
		t.Error("tab should do nothing on home")
	}
}
