package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/pkg/domain"
)

type articlesLoadedMsg struct {
	articles []domain.Article
	err      error
}

// articlesModel is the feed of articles from the user's themes.
type articlesModel struct {
	deps     Deps
	articles []domain.Article
	sortBy   domain.ArticleSort
	cursor   int
	loading  bool
	err      string
	width    int
	height   int
}

func newArticlesModel(deps Deps) articlesModel {
	return articlesModel{deps: deps, sortBy: domain.SortByTitle, loading: true}
}

func (m articlesModel) Init() tea.Cmd {
	return m.load()
}

func (m articlesModel) load() tea.Cmd {
	api := m.deps.API
	return func() tea.Msg {
		articles, err := api.ListArticles(context.Background())
		return articlesLoadedMsg{articles: articles, err: err}
	}
}

func (m articlesModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case articlesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.articles = domain.SortArticles(msg.articles, m.sortBy)
		if m.cursor >= len(m.articles) {
			m.cursor = max(0, len(m.articles)-1)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.articles)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "s":
			m.sortBy = m.sortBy.Next()
			m.articles = domain.SortArticles(m.articles, m.sortBy)
			m.cursor = 0
		case "r":
			m.loading = true
			return m, m.load()
		case "n":
			return m, navigate(router.ArticlePath, nil)
		case "enter":
			if m.cursor < len(m.articles) {
				return m, navigate(router.ArticleDetailPath(m.articles[m.cursor].ID), nil)
			}
		}
	}
	return m, nil
}

func (m articlesModel) View() string {
	if m.loading && len(m.articles) == 0 {
		return " " + dimStyle.Render("loading articles...")
	}
	if m.err != "" {
		return " " + errorStyle.Render("error: "+m.err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, " %s  %s\n\n",
		sectionHeaderStyle.Render("ARTICLES"),
		metaStyle.Render("sorted by "+string(m.sortBy)))

	if len(m.articles) == 0 {
		b.WriteString(" " + dimStyle.Render("no articles yet, subscribe to a theme or write one (n)"))
		return b.String()
	}

	// Three lines per article.
	perPage := max(1, (m.height-3)/3)
	start := 0
	if m.cursor >= perPage {
		start = m.cursor - perPage + 1
	}
	end := min(len(m.articles), start+perPage)

	lineW := max(20, m.width-6)
	for i := start; i < end; i++ {
		a := m.articles[i]
		title := truncStr(a.Title, lineW)
		meta := metaStyle.Render(a.AuthorName + " · " + formatTime(a.CreatedAt.Time))
		if a.ThemeTitle != "" {
			themeID := int64(0)
			if a.ThemeID != nil {
				themeID = *a.ThemeID
			}
			meta = ThemeStyle(themeID).Render(a.ThemeTitle) + " " + meta
		}
		if i == m.cursor {
			fmt.Fprintf(&b, " %s %s\n", accentStyle.Render(">"), selectedRowBg.Inherit(selectedStyle).Render(title))
		} else {
			fmt.Fprintf(&b, "   %s\n", normalStyle.Render(title))
		}
		fmt.Fprintf(&b, "   %s\n", meta)
		fmt.Fprintf(&b, "   %s\n", dimStyle.Render(excerpt(a.Content, lineW)))
	}
	return b.String()
}

func (m articlesModel) editing() bool { return false }

func (m articlesModel) help() string {
	return helpEntries("j/k", "nav", "enter", "open", "s", "sort", "n", "new", "r", "reload")
}
