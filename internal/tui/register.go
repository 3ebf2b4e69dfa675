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
	registerUsername = iota
	registerEmail
	registerPassword
)

type registeredMsg struct {
	err error
}

type registerModel struct {
	deps       Deps
	form       form
	submitting bool
	status     string
}

func newRegisterModel(deps Deps) registerModel {
	return registerModel{
		deps: deps,
		form: newForm(
			formField{label: "username"},
			formField{label: "email"},
			formField{label: "password", secret: true},
		),
	}
}

func (m registerModel) Init() tea.Cmd { return nil }

func (m registerModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case registeredMsg:
		m.submitting = false
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}
		return m, tea.Batch(toast("account created, you can log in"), navigate(router.LoginPath, nil))

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

func (m registerModel) submit() (screen, tea.Cmd) {
	req := client.RegisterRequest{
		Username: m.form.value(registerUsername),
		Email:    m.form.value(registerEmail),
		Password: m.form.secret(registerPassword),
	}
	if err := domain.ValidateRegistration(req.Username, req.Email, req.Password); err != nil {
		m.status = err.Error()
		return m, nil
	}

	m.submitting = true
	api := m.deps.API
	return m, func() tea.Msg {
		return registeredMsg{err: api.Register(context.Background(), req)}
	}
}

func (m registerModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("REGISTER") + "\n\n")
	b.WriteString(m.form.view())
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("creating account..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	default:
		b.WriteString(" " + metaStyle.Render("password: 8+ characters with a digit, a lower and an upper case letter"))
	}
	return b.String()
}

func (m registerModel) editing() bool { return true }

func (m registerModel) help() string {
	return helpEntries("tab", "next", "enter", "submit", "esc", "back")
}
