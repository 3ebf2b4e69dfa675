package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/mdd/pkg/domain"
)

type themesLoadedMsg struct {
	themes []domain.Theme
	err    error
}

type themeToggledMsg struct {
	title      string
	subscribed bool
	err        error
}

// themesModel is the theme catalog with subscribe toggles.
type themesModel struct {
	deps    Deps
	themes  []domain.Theme
	cursor  int
	loading bool
	busy    bool
	err     string
	width   int
	height  int
}

func newThemesModel(deps Deps) themesModel {
	return themesModel{deps: deps, loading: true}
}

func (m themesModel) Init() tea.Cmd {
	api := m.deps.API
	return func() tea.Msg {
		themes, err := api.ListThemes(context.Background())
		return themesLoadedMsg{themes: themes, err: err}
	}
}

// subscribed reads the session's derived list, so it reflects the last refresh.
func (m themesModel) subscribed(id int64) bool {
	_, ok := domain.ThemeByID(m.deps.Session.Snapshot().SubscribedThemes, id)
	return ok
}

func (m themesModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case themesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.themes = msg.themes
		if m.cursor >= len(m.themes) {
			m.cursor = max(0, len(m.themes)-1)
		}

	case themeToggledMsg:
		m.busy = false
		if msg.err != nil {
			return m, toastErr("could not update subscription", msg.err)
		}
		if msg.subscribed {
			return m, toast("subscribed to " + msg.title)
		}
		return m, toast("unsubscribed from " + msg.title)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.themes)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter", " ", "s":
			if !m.busy && m.cursor < len(m.themes) {
				m.busy = true
				return m, m.toggle(m.themes[m.cursor])
			}
		}
	}
	return m, nil
}

// toggle flips the subscription, then refreshes the session so every screen
// sees the new list.
func (m themesModel) toggle(t domain.Theme) tea.Cmd {
	api, sess := m.deps.API, m.deps.Session
	wasSubscribed := m.subscribed(t.ID)
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if wasSubscribed {
			err = api.Unsubscribe(ctx, t.ID)
		} else {
			err = api.Subscribe(ctx, t.ID)
		}
		if err != nil {
			return themeToggledMsg{title: t.Title, err: err}
		}
		sess.Refresh(ctx)
		return themeToggledMsg{title: t.Title, subscribed: !wasSubscribed}
	}
}

func (m themesModel) View() string {
	if m.loading && len(m.themes) == 0 {
		return " " + dimStyle.Render("loading themes...")
	}
	if m.err != "" {
		return " " + errorStyle.Render("error: "+m.err)
	}

	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("THEMES") + "\n\n")
	if len(m.themes) == 0 {
		b.WriteString(" " + dimStyle.Render("no themes"))
		return b.String()
	}

	descW := max(20, m.width-8)
	for i, t := range m.themes {
		mark := metaStyle.Render("[ ]")
		if m.subscribed(t.ID) {
			mark = successStyle.Render("[✓]")
		}
		cursor := " "
		title := ThemeStyle(t.ID).Render(t.Title)
		if i == m.cursor {
			cursor = accentStyle.Render(">")
			title = selectedRowBg.Render(title)
		}
		fmt.Fprintf(&b, " %s %s %s\n", cursor, mark, title)
		if t.Description != "" {
			fmt.Fprintf(&b, "       %s\n", dimStyle.Render(truncStr(t.Description, descW)))
		}
	}
	if m.busy {
		b.WriteString("\n " + dimStyle.Render("updating..."))
	}
	return b.String()
}

func (m themesModel) editing() bool { return false }

func (m themesModel) help() string {
	return helpEntries("j/k", "nav", "enter", "subscribe/unsubscribe")
}
