package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/pkg/client"
	"github.com/naveenspark/mdd/pkg/domain"
)

const (
	meUsername = iota
	meEmail
)

type profileSavedMsg struct {
	err error
}

type unsubscribedMsg struct {
	title string
	err   error
}

type loggedOutMsg struct {
	err error
}

// meModel shows the profile, its subscriptions and the logout action.
type meModel struct {
	deps      Deps
	form      form
	editingOn bool
	saving    bool
	status    string
	cursor    int
	busy      bool
	width     int
	height    int
}

func newMeModel(deps Deps) meModel {
	m := meModel{
		deps: deps,
		form: newForm(
			formField{label: "username"},
			formField{label: "email"},
		),
	}
	m.fillForm()
	return m
}

// fillForm copies the session's user into the form fields.
func (m *meModel) fillForm() {
	if u := m.deps.Session.Snapshot().User; u != nil {
		m.form.set(meUsername, u.Username)
		m.form.set(meEmail, u.Email)
	}
}

func (m meModel) themes() []domain.Theme {
	return m.deps.Session.Snapshot().SubscribedThemes
}

func (m meModel) Init() tea.Cmd { return nil }

func (m meModel) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, toastErr("update failed", msg.err)
		}
		m.editingOn = false
		m.fillForm()
		return m, toast("profile updated")

	case unsubscribedMsg:
		m.busy = false
		if msg.err != nil {
			return m, toastErr("could not unsubscribe", msg.err)
		}
		if n := len(m.themes()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, toast("unsubscribed from " + msg.title)

	case loggedOutMsg:
		if msg.err != nil {
			m.deps.Log.WithError(msg.err).Warn("logout: token not removed")
		}
		return m, tea.Batch(toast("logged out"), navigate(router.HomePath, nil))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.editingOn {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m meModel) updateKeys(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.String() {
	case "e":
		m.fillForm()
		m.editingOn = true
		m.form.focusOn(meUsername)
		m.status = ""
	case "j", "down":
		if m.cursor < len(m.themes())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "u":
		themes := m.themes()
		if !m.busy && m.cursor < len(themes) {
			m.busy = true
			return m, m.unsubscribe(themes[m.cursor])
		}
	case "x":
		sess := m.deps.Session
		return m, func() tea.Msg {
			return loggedOutMsg{err: sess.LogOut()}
		}
	}
	return m, nil
}

func (m meModel) updateEditing(msg tea.KeyMsg) (screen, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	if msg.String() == "esc" {
		m.editingOn = false
		m.status = ""
		m.fillForm()
		return m, nil
	}
	if m.form.handleKey(msg) {
		return m.save()
	}
	return m, nil
}

// save updates the profile remotely, then hands the returned user to the
// session so the derived themes are recomputed.
func (m meModel) save() (screen, tea.Cmd) {
	req := client.UpdateUserRequest{
		Username: m.form.value(meUsername),
		Email:    m.form.value(meEmail),
	}
	if err := domain.ValidateProfile(req.Username, req.Email); err != nil {
		m.status = err.Error()
		return m, nil
	}

	m.saving = true
	api, sess := m.deps.API, m.deps.Session
	return m, func() tea.Msg {
		ctx := context.Background()
		user, err := api.UpdateMe(ctx, req)
		if err != nil {
			return profileSavedMsg{err: err}
		}
		sess.UpdateUser(ctx, user)
		return profileSavedMsg{}
	}
}

func (m meModel) unsubscribe(t domain.Theme) tea.Cmd {
	api, sess := m.deps.API, m.deps.Session
	return func() tea.Msg {
		ctx := context.Background()
		if err := api.Unsubscribe(ctx, t.ID); err != nil {
			return unsubscribedMsg{title: t.Title, err: err}
		}
		sess.Refresh(ctx)
		return unsubscribedMsg{title: t.Title}
	}
}

func (m meModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("PROFILE") + "\n\n")
	if m.editingOn {
		b.WriteString(m.form.view())
		switch {
		case m.saving:
			b.WriteString(" " + dimStyle.Render("saving...") + "\n")
		case m.status != "":
			b.WriteString(" " + errorStyle.Render(m.status) + "\n")
		}
	} else {
		u := m.deps.Session.Snapshot().User
		if u == nil {
			b.WriteString(" " + dimStyle.Render("loading profile...") + "\n")
		} else {
			fmt.Fprintf(&b, "   %s %s\n", metaStyle.Render("username"), selectedStyle.Render(u.Username))
			fmt.Fprintf(&b, "   %s    %s\n", metaStyle.Render("email"), normalStyle.Render(u.Email))
		}
	}

	themes := m.themes()
	b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("SUBSCRIPTIONS (%d)", len(themes))) + "\n")
	if len(themes) == 0 {
		b.WriteString(" " + dimStyle.Render("no subscriptions yet, browse themes (2)") + "\n")
	}
	for i, t := range themes {
		cursor := " "
		if i == m.cursor && !m.editingOn {
			cursor = accentStyle.Render(">")
		}
		fmt.Fprintf(&b, " %s %s\n", cursor, ThemeStyle(t.ID).Render(t.Title))
	}
	return b.String()
}

func (m meModel) editing() bool { return m.editingOn }

func (m meModel) help() string {
	if m.editingOn {
		return helpEntries("tab", "next", "enter", "save", "esc", "cancel")
	}
	return helpEntries("e", "edit", "j/k", "nav", "u", "unsubscribe", "x", "log out")
}
