package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/mdd/internal/browser"
	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/pkg/client"
	"github.com/naveenspark/mdd/pkg/domain"
)

type articleLoadedMsg struct {
	article  *domain.Article
	comments []domain.Comment
	err      error
}

type commentPostedMsg struct {
	comment *domain.Comment
	err     error
}

type copyResultMsg struct {
	err error
}

type openResultMsg struct {
	err error
}

// writeClipboard and openURL are swapped out in tests.
var (
	writeClipboard = clipboard.WriteAll
	openURL        = browser.Open
)

// articleModel shows one article with its comments and a comment box.
type articleModel struct {
	deps     Deps
	id       int64
	article  *domain.Article
	comments []domain.Comment
	loading  bool
	err      string

	composing bool
	draft     string
	posting   bool
	status    string

	scroll int
	width  int
	height int
}

func newArticleModel(deps Deps, id int64) articleModel {
	return articleModel{deps: deps, id: id, loading: true}
}

func (m articleModel) Init() tea.Cmd {
	return m.load()
}

// load fetches the article and its comments concurrently.
func (m articleModel) load() tea.Cmd {
	api, id := m.deps.API, m.id
	return func() tea.Msg {
		var (
			article  *domain.Article
			comments []domain.Comment
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			article, err = api.GetArticle(ctx, id)
			return err
		})
		g.Go(func() error {
			var err error
			comments, err = api.ListComments(ctx, id)
			return err
		})
		if err := g.Wait(); err != nil {
			return articleLoadedMsg{err: err}
		}
		return articleLoadedMsg{article: article, comments: comments}
	}
}

func (m articleModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case articleLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.article = msg.article
		m.comments = msg.comments
		return m, nil

	case commentPostedMsg:
		m.posting = false
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}
		m.draft = ""
		m.composing = false
		m.comments = append(m.comments, *msg.comment)
		return m, toast("comment posted")

	case copyResultMsg:
		if msg.err != nil {
			return m, toastErr("copy failed", msg.err)
		}
		return m, toast("copied to clipboard")

	case openResultMsg:
		if msg.err != nil {
			return m, toastErr("open failed", msg.err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.composing {
			return m.updateComposing(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m articleModel) updateKeys(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		return m, navigate(router.ArticlesPath, nil)
	case "j", "down":
		m.scroll++
	case "k", "up":
		if m.scroll > 0 {
			m.scroll--
		}
	case "c", "enter":
		if m.article != nil {
			m.composing = true
			m.status = ""
		}
	case "y":
		if m.article != nil {
			text := m.article.Title + "\n\n" + m.article.Content
			return m, func() tea.Msg {
				return copyResultMsg{err: writeClipboard(text)}
			}
		}
	case "o":
		if m.article != nil && m.deps.WebURL != "" {
			url := browser.ArticleURL(m.deps.WebURL, m.article.ID)
			return m, func() tea.Msg {
				return openResultMsg{err: openURL(url)}
			}
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m articleModel) updateComposing(msg tea.KeyMsg) (screen, tea.Cmd) {
	if m.posting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.composing = false
		m.status = ""
	case "enter":
		return m.postComment()
	default:
		m.draft = editKey(m.draft, msg)
	}
	return m, nil
}

func (m articleModel) postComment() (screen, tea.Cmd) {
	content := strings.TrimSpace(m.draft)
	if err := domain.ValidateComment(content); err != nil {
		m.status = err.Error()
		return m, nil
	}
	user := m.deps.Session.Snapshot().User
	if user == nil {
		m.status = "session not loaded yet, try again"
		return m, nil
	}

	m.posting = true
	api := m.deps.API
	req := client.CreateCommentRequest{Content: content, UserID: user.ID, ArticleID: m.id}
	return m, func() tea.Msg {
		c, err := api.CreateComment(context.Background(), req)
		return commentPostedMsg{comment: c, err: err}
	}
}

func (m articleModel) View() string {
	if m.loading && m.article == nil {
		return " " + dimStyle.Render("loading article...")
	}
	if m.err != "" {
		return " " + errorStyle.Render("error: "+m.err)
	}
	if m.article == nil {
		return ""
	}

	a := m.article
	var b strings.Builder
	fmt.Fprintf(&b, " %s\n", selectedStyle.Render(a.Title))
	meta := []string{}
	if !a.CreatedAt.IsZero() {
		meta = append(meta, a.CreatedAt.Format("02/01/2006"))
	}
	if a.AuthorName != "" {
		meta = append(meta, a.AuthorName)
	}
	line := metaStyle.Render(strings.Join(meta, " · "))
	if a.ThemeTitle != "" {
		var themeID int64
		if a.ThemeID != nil {
			themeID = *a.ThemeID
		}
		line += "  " + ThemeStyle(themeID).Render(a.ThemeTitle)
	}
	b.WriteString(" " + line + "\n\n")

	for _, l := range strings.Split(a.Content, "\n") {
		b.WriteString(" " + normalStyle.Render(l) + "\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("COMMENTS (%d)", len(m.comments))) + "\n")
	for _, c := range m.comments {
		author := c.AuthorName
		if author == "" {
			author = "anonymous"
		}
		fmt.Fprintf(&b, " %s %s\n", accentStyle.Render(author), commentTextStyle.Render(c.Content))
	}
	b.WriteString("\n " + renderInput(m.draft, "write a comment (c)", m.composing) + "\n")
	if m.posting {
		b.WriteString(" " + dimStyle.Render("posting...") + "\n")
	} else if m.status != "" {
		b.WriteString(" " + errorStyle.Render(m.status) + "\n")
	}

	lines := strings.Split(b.String(), "\n")
	if m.scroll > 0 {
		skip := min(m.scroll, max(0, len(lines)-1))
		lines = lines[skip:]
	}
	return strings.Join(lines, "\n")
}

func (m articleModel) editing() bool { return m.composing }

func (m articleModel) help() string {
	if m.composing {
		return helpEntries("enter", "send", "esc", "cancel")
	}
	return helpEntries("j/k", "scroll", "c", "comment", "y", "copy", "o", "browser", "esc", "back")
}
