package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/mdd/internal/guard"
	"github.com/naveenspark/mdd/internal/router"
)

const banner = "MONDE DE DEV"

// homeModel is the landing screen. When a guarded navigation was bounced
// here, it shows where the user was headed.
type homeModel struct {
	deps      Deps
	returnURL string
	frame     int
	width     int
	height    int
}

func newHomeModel(deps Deps, loc router.Location) homeModel {
	return homeModel{deps: deps, returnURL: router.ReturnURL(loc)}
}

func (m homeModel) Init() tea.Cmd {
	return shimmerTickCmd()
}

func (m homeModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case shimmerTickMsg:
		m.frame++
		return m, shimmerTickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "l", "enter":
			// Carry the bounced path so the login screen can resume it.
			var params map[string]string
			if m.returnURL != "" {
				params = map[string]string{guard.ReturnURLParam: m.returnURL}
			}
			return m, navigate(router.LoginPath, params)
		case "r":
			return m, navigate(router.RegisterPath, nil)
		}
	}
	return m, nil
}

func (m homeModel) View() string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(m.center(renderShimmer(banner, m.frame)) + "\n\n")
	b.WriteString(m.center(dimStyle.Render("a place for developers to share articles by theme")) + "\n\n")
	if m.returnURL != "" {
		b.WriteString(m.center(metaStyle.Render("log in to continue to ")+accentStyle.Render(m.returnURL)) + "\n\n")
	}
	b.WriteString(m.center(helpEntries("l", "log in", "r", "register")) + "\n")
	return b.String()
}

func (m homeModel) center(s string) string {
	pad := (m.width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (m homeModel) editing() bool { return false }

func (m homeModel) help() string {
	return helpEntries("l", "log in", "r", "register")
}
