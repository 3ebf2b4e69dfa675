package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/pkg/client"
	"github.com/naveenspark/mdd/pkg/domain"
)

const (
	articleFieldTheme = iota
	articleFieldTitle
	articleFieldContent
)

type formThemesLoadedMsg struct {
	themes []domain.Theme
	err    error
}

type articleCreatedMsg struct {
	article *domain.Article
	err     error
}

// articleFormModel publishes a new article into one theme.
type articleFormModel struct {
	deps       Deps
	form       form
	themes     []domain.Theme
	themeIdx   int // -1 until a theme is picked
	submitting bool
	status     string
}

func newArticleFormModel(deps Deps) articleFormModel {
	return articleFormModel{
		deps: deps,
		form: newForm(
			formField{label: "theme"},
			formField{label: "title"},
			formField{label: "content", multiline: true},
		),
		themeIdx: -1,
	}
}

func (m articleFormModel) Init() tea.Cmd {
	api := m.deps.API
	return func() tea.Msg {
		themes, err := api.ListThemes(context.Background())
		return formThemesLoadedMsg{themes: themes, err: err}
	}
}

func (m articleFormModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case formThemesLoadedMsg:
		if msg.err != nil {
			m.status = "could not load themes: " + errorText(msg.err)
			return m, nil
		}
		m.themes = msg.themes
		return m, nil

	case articleCreatedMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}
		return m, tea.Batch(toast("article published"), navigate(router.ArticlesPath, nil))

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		m.status = ""
		key := msg.String()
		if key == "esc" {
			return m, navigate(router.ArticlesPath, nil)
		}
		if m.form.focus == articleFieldTheme {
			switch key {
			case "h", "left":
				m.cycleTheme(-1)
				return m, nil
			case "l", "right", " ":
				m.cycleTheme(1)
				return m, nil
			case "tab", "down", "shift+tab", "up", "enter", "ctrl+s":
			default:
				return m, nil
			}
		}
		if m.form.handleKey(msg) {
			return m.submit()
		}
	}
	return m, nil
}

func (m *articleFormModel) cycleTheme(step int) {
	n := len(m.themes)
	if n == 0 {
		return
	}
	if m.themeIdx < 0 {
		if step > 0 {
			m.themeIdx = 0
		} else {
			m.themeIdx = n - 1
		}
	} else {
		m.themeIdx = (m.themeIdx + step + n) % n
	}
	m.form.set(articleFieldTheme, m.themes[m.themeIdx].Title)
}

func (m articleFormModel) selectedThemeID() int64 {
	if m.themeIdx < 0 || m.themeIdx >= len(m.themes) {
		return 0
	}
	return m.themes[m.themeIdx].ID
}

func (m articleFormModel) submit() (screen, tea.Cmd) {
	req := client.CreateArticleRequest{
		ThemeID: m.selectedThemeID(),
		Title:   m.form.value(articleFieldTitle),
		Content: m.form.value(articleFieldContent),
	}
	if err := domain.ValidateArticle(req.ThemeID, req.Title, req.Content); err != nil {
		m.status = err.Error()
		if domain.FieldOf(err) == "theme" {
			m.form.focusOn(articleFieldTheme)
		}
		return m, nil
	}

	m.submitting = true
	api := m.deps.API
	return m, func() tea.Msg {
		a, err := api.CreateArticle(context.Background(), req)
		return articleCreatedMsg{article: a, err: err}
	}
}

func (m articleFormModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("NEW ARTICLE") + "\n\n")
	b.WriteString(m.form.view())
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("publishing..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	case m.form.focus == articleFieldTheme:
		b.WriteString(" " + metaStyle.Render("h/l to pick a theme"))
	}
	return b.String()
}

func (m articleFormModel) editing() bool { return true }

func (m articleFormModel) help() string {
	return helpEntries("tab", "next", "h/l", "theme", "ctrl+s", "publish", "esc", "cancel")
}
