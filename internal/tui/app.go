package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/internal/session"
	"github.com/naveenspark/mdd/pkg/client"
	"github.com/naveenspark/mdd/pkg/domain"
)

// API is the subset of the REST client the screens use.
type API interface {
	Login(ctx context.Context, usernameOrEmail, password string) (string, error)
	Register(ctx context.Context, req client.RegisterRequest) error
	UpdateMe(ctx context.Context, req client.UpdateUserRequest) (*domain.User, error)
	ListThemes(ctx context.Context) ([]domain.Theme, error)
	Subscribe(ctx context.Context, themeID int64) error
	Unsubscribe(ctx context.Context, themeID int64) error
	ListArticles(ctx context.Context) ([]domain.Article, error)
	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
	CreateArticle(ctx context.Context, req client.CreateArticleRequest) (*domain.Article, error)
	ListComments(ctx context.Context, articleID int64) ([]domain.Comment, error)
	CreateComment(ctx context.Context, req client.CreateCommentRequest) (*domain.Comment, error)
}

// Deps are the long-lived collaborators shared by every screen.
type Deps struct {
	API     API
	Session *session.Coordinator
	Router  *router.Router
	WebURL  string
	Version string
	Log     logrus.FieldLogger
}

// screen is one routed view.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View() string
	// editing reports whether keystrokes belong to a text field.
	editing() bool
	help() string
}

// navigateMsg asks the App to navigate through the router.
type navigateMsg struct {
	path   string
	params map[string]string
}

// navigatedMsg carries the outcome of a guarded navigation.
type navigatedMsg struct {
	requested string
	loc       router.Location
	err       error
}

// toastMsg shows a one-line result under the body.
type toastMsg struct {
	text  string
	isErr bool
}

type authChangedMsg bool

func navigate(path string, params map[string]string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path, params: params} }
}

func toast(text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text} }
}

func toastErr(prefix string, err error) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: prefix + ": " + errorText(err), isErr: true} }
}

// App is the root Bubbletea model.
type App struct {
	deps    Deps
	start   string
	loc     router.Location
	screen  screen
	authed  bool
	authSub *session.Subscription[bool]
	toast   toastMsg
	width   int
	height  int
}

// NewApp creates the TUI. start is the first path navigated to.
func NewApp(deps Deps, start string) App {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	deps.Log = deps.Log.WithField("component", "tui")
	return App{
		deps:    deps,
		start:   start,
		screen:  newHomeModel(deps, router.Location{}),
		authed:  deps.Session.IsAuthenticated(),
		authSub: deps.Session.Authenticated().Subscribe(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.navigate(a.start, nil), a.watchAuth())
}

func (a App) navigate(path string, params map[string]string) tea.Cmd {
	r := a.deps.Router
	return func() tea.Msg {
		loc, err := r.Navigate(context.Background(), path, params)
		return navigatedMsg{requested: path, loc: loc, err: err}
	}
}

// watchAuth waits for the next value of the authentication stream.
func (a App) watchAuth() tea.Cmd {
	sub := a.authSub
	return func() tea.Msg {
		v, ok := <-sub.C()
		if !ok {
			return nil
		}
		return authChangedMsg(v)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmd tea.Cmd
		a.screen, cmd = a.screen.Update(a.bodySize())
		return a, cmd

	case authChangedMsg:
		a.authed = bool(msg)
		return a, a.watchAuth()

	case navigateMsg:
		return a, a.navigate(msg.path, msg.params)

	case navigatedMsg:
		if msg.err != nil {
			a.deps.Log.WithError(msg.err).WithField("path", msg.requested).Warn("navigation failed")
			if errors.Is(msg.err, router.ErrNotFound) {
				a.toast = toastMsg{text: "no such page: " + msg.requested, isErr: true}
			} else {
				a.toast = toastMsg{text: "cannot open " + msg.requested, isErr: true}
			}
			return a, nil
		}
		a.loc = msg.loc
		a.screen = a.newScreen(msg.loc)
		a.screen, _ = a.screen.Update(a.bodySize())
		return a, a.screen.Init()

	case toastMsg:
		a.toast = msg
		return a, nil

	case tea.KeyMsg:
		a.toast = toastMsg{}
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}
		if !a.screen.editing() {
			if cmd, ok := a.globalKey(msg.String()); ok {
				return a, cmd
			}
		}
	}

	var cmd tea.Cmd
	a.screen, cmd = a.screen.Update(msg)
	return a, cmd
}

func (a App) quit() tea.Cmd {
	a.authSub.Unsubscribe()
	return tea.Quit
}

// globalKey handles keys that work on every screen outside text fields.
func (a App) globalKey(key string) (tea.Cmd, bool) {
	if key == "q" {
		return a.quit(), true
	}
	for _, t := range a.tabs() {
		if t.key == key {
			if a.loc.Route == t.route {
				return nil, true
			}
			return a.navigate(t.path, nil), true
		}
	}
	return nil, false
}

func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(1) + tabs(1) + blank(1) + toast(1) + help(1) = 5 lines
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 5}
}

func (a App) newScreen(loc router.Location) screen {
	switch loc.Route {
	case router.Login:
		return newLoginModel(a.deps, router.ReturnURL(loc))
	case router.Register:
		return newRegisterModel(a.deps)
	case router.Articles:
		return newArticlesModel(a.deps)
	case router.ArticleDetail:
		id, err := strconv.ParseInt(loc.Param("id"), 10, 64)
		if err != nil {
			return newHomeModel(a.deps, loc)
		}
		return newArticleModel(a.deps, id)
	case router.NewArticle:
		return newArticleFormModel(a.deps)
	case router.Themes:
		return newThemesModel(a.deps)
	case router.Me:
		return newMeModel(a.deps)
	default:
		return newHomeModel(a.deps, loc)
	}
}

type tab struct {
	key   string
	name  string
	path  string
	route string
}

// tabs follow the authentication flag: signed-in users get the content
// screens, everyone else gets the entry points.
func (a App) tabs() []tab {
	if a.authed {
		return []tab{
			{"1", "Articles", router.ArticlesPath, router.Articles},
			{"2", "Themes", router.ThemesPath, router.Themes},
			{"3", "Me", router.MePath, router.Me},
		}
	}
	return []tab{
		{"1", "Home", router.HomePath, router.Home},
		{"2", "Log in", router.LoginPath, router.Login},
		{"3", "Register", router.RegisterPath, router.Register},
	}
}

func (a App) View() string {
	title := titleStyle.Render("MDD")
	who := ""
	if u := a.deps.Session.Snapshot().User; u != nil && a.authed {
		who = metaStyle.Render("@" + u.Username)
	}
	pad := a.width - lipgloss.Width(title) - lipgloss.Width(who) - 2
	if pad < 1 {
		pad = 1
	}
	header := " " + title + strings.Repeat(" ", pad) + who

	var tabBar strings.Builder
	tabBar.WriteString(" ")
	for i, t := range a.tabs() {
		if i > 0 {
			tabBar.WriteString("   ")
		}
		if t.route == a.loc.Route {
			tabBar.WriteString(accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name))
		} else {
			tabBar.WriteString(metaStyle.Render(t.key) + " " + dimStyle.Render(t.name))
		}
	}

	body := strings.TrimRight(truncateToHeight(a.screen.View(), a.height-5), "\n")

	toastLine := ""
	if a.toast.text != "" {
		if a.toast.isErr {
			toastLine = " " + errorStyle.Render(a.toast.text)
		} else {
			toastLine = " " + successStyle.Render(a.toast.text)
		}
	}

	help := " " + a.screen.help()
	if !a.screen.editing() {
		help += "  " + helpEntry("1-3", "tabs") + "  " + helpEntry("q", "quit")
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s", header, tabBar.String(), body, toastLine, help)
}
