package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/pkg/domain"
)

const (
	loginIdentifier = iota
	loginPassword
)

type loginDoneMsg struct {
	err error
}

type loginModel struct {
	deps       Deps
	form       form
	returnURL  string
	submitting bool
	status     string
}

func newLoginModel(deps Deps, returnURL string) loginModel {
	return loginModel{
		deps: deps,
		form: newForm(
			formField{label: "username or email"},
			formField{label: "password", secret: true},
		),
		returnURL: returnURL,
	}
}

func (m loginModel) Init() tea.Cmd { return nil }

func (m loginModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}
		return m, tea.Batch(toast("logged in"), navigate(m.next(), nil))

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		m.status = ""
		if msg.String() == "esc" {
			return m, navigate(router.HomePath, nil)
		}
		if m.form.handleKey(msg) {
			return m.submit()
		}
	}
	return m, nil
}

// next is where a successful login lands: the bounced path when there is one.
func (m loginModel) next() string {
	if strings.HasPrefix(m.returnURL, "/") && !strings.HasPrefix(m.returnURL, "//") {
		return m.returnURL
	}
	return router.ArticlesPath
}

func (m loginModel) submit() (screen, tea.Cmd) {
	identifier := m.form.value(loginIdentifier)
	password := m.form.secret(loginPassword)
	if err := domain.ValidateLogin(identifier, password); err != nil {
		m.status = err.Error()
		return m, nil
	}

	m.submitting = true
	api, sess := m.deps.API, m.deps.Session
	return m, func() tea.Msg {
		ctx := context.Background()
		token, err := api.Login(ctx, identifier, password)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		return loginDoneMsg{err: sess.LogIn(ctx, token)}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("LOG IN") + "\n\n")
	b.WriteString(m.form.view())
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("logging in..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	}
	return b.String()
}

func (m loginModel) editing() bool { return true }

func (m loginModel) help() string {
	return helpEntries("tab", "next", "enter", "submit", "esc", "back")
}
