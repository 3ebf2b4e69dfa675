package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/naveenspark/mdd/internal/config"
	"github.com/naveenspark/mdd/internal/logging"
	"github.com/naveenspark/mdd/internal/router"
	"github.com/naveenspark/mdd/internal/session"
	"github.com/naveenspark/mdd/internal/tokenstore"
	"github.com/naveenspark/mdd/internal/tui"
	"github.com/naveenspark/mdd/pkg/client"
	"github.com/naveenspark/mdd/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Println("mdd " + version)
			return nil
		case "help", "--help", "-h":
			printHelp(os.Stdout)
			return nil
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, closer, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck

	c := newCLI(cfg, log, os.Stdin, os.Stdout)
	if len(args) == 0 {
		return c.runTUI()
	}
	return c.dispatch(context.Background(), args)
}

// cli is everything a subcommand needs, built once from config.
type cli struct {
	cfg   config.Config
	log   logrus.FieldLogger
	store *tokenstore.FileStore
	api   *client.Client
	sess  *session.Coordinator

	in           *bufio.Reader
	out          io.Writer
	readPassword func() (string, error)
}

func newCLI(cfg config.Config, log logrus.FieldLogger, in io.Reader, out io.Writer) *cli {
	store := tokenstore.NewFileStore(cfg.Token.Path, cfg.Token.Env)
	api := client.New(cfg.API.URL, store,
		client.WithTimeout(cfg.API.Timeout),
		client.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
		client.WithLogger(log),
	)
	c := &cli{
		cfg:   cfg,
		log:   log,
		store: store,
		api:   api,
		sess:  session.New(store, api, api, log),
		in:    bufio.NewReader(in),
		out:   out,
	}
	c.readPassword = c.defaultReadPassword
	return c
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	switch args[0] {
	case "login":
		return c.runLogin(ctx)
	case "register":
		return c.runRegister(ctx)
	case "logout":
		return c.runLogout()
	case "status":
		return c.runStatus(ctx)
	default:
		printHelp(c.out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// startPath opens the feed for a stored credential, the landing page otherwise.
// The feed route's guard sends a stale credential back home.
func (c *cli) startPath() string {
	if _, ok := c.store.Get(); ok {
		return router.ArticlesPath
	}
	return router.HomePath
}

func (c *cli) runTUI() error {
	r := router.New(c.log)
	r.Add(router.AppRoutes(c.sess, r, c.log)...)

	app := tui.NewApp(tui.Deps{
		API:     c.api,
		Session: c.sess,
		Router:  r,
		WebURL:  c.cfg.Web.URL,
		Version: version,
		Log:     c.log,
	}, c.startPath())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func (c *cli) runLogin(ctx context.Context) error {
	identifier, err := c.prompt("Username or email: ")
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, "Password: ")
	password, err := c.readPassword()
	fmt.Fprintln(c.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if err := domain.ValidateLogin(identifier, password); err != nil {
		return err
	}

	token, err := c.api.Login(ctx, identifier, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := c.sess.LogIn(ctx, token); err != nil {
		return err
	}

	// LogIn refreshes; a missing user means the token was saved but /api/me failed.
	me := c.sess.Snapshot().User
	if me == nil {
		fmt.Fprintln(c.out, "Token saved but verification failed, see the log for details.")
		return nil
	}
	fmt.Fprintf(c.out, "Logged in as @%s\n", me.Username)
	return nil
}

func (c *cli) runRegister(ctx context.Context) error {
	username, err := c.prompt("Username: ")
	if err != nil {
		return err
	}
	email, err := c.prompt("Email: ")
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, "Password: ")
	password, err := c.readPassword()
	fmt.Fprintln(c.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if err := domain.ValidateRegistration(username, email, password); err != nil {
		return err
	}

	err = c.api.Register(ctx, client.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Fprintln(c.out, "Account created. Run `mdd login` to sign in.")
	return nil
}

func (c *cli) runLogout() error {
	if _, ok := c.store.Get(); !ok {
		fmt.Fprintln(c.out, "Already logged out.")
		return nil
	}
	if err := c.sess.LogOut(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out.")
	return nil
}

func (c *cli) runStatus(ctx context.Context) error {
	token, ok := c.store.Get()
	if !ok {
		fmt.Fprintln(c.out, "Not logged in.")
		return nil
	}
	if claims, err := tokenstore.Inspect(token); err == nil && !claims.ExpiresAt.IsZero() {
		state := "expires"
		if claims.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(c.out, "Token %s %s\n", state, claims.ExpiresAt.Local().Format(time.RFC1123))
	}

	c.sess.Refresh(ctx)
	st := c.sess.Snapshot()
	_, stillStored := c.store.Get()
	switch {
	case !stillStored:
		fmt.Fprintln(c.out, "The server rejected the stored token. Run `mdd login` again.")
	case st.User == nil:
		fmt.Fprintln(c.out, "Could not reach the server.")
	default:
		fmt.Fprintf(c.out, "Logged in as @%s <%s>\n", st.User.Username, st.User.Email)
		titles := make([]string, 0, len(st.SubscribedThemes))
		for _, t := range st.SubscribedThemes {
			titles = append(titles, t.Title)
		}
		if len(titles) == 0 {
			fmt.Fprintln(c.out, "No subscribed themes.")
		} else {
			fmt.Fprintf(c.out, "Themes: %s\n", strings.Join(titles, ", "))
		}
	}
	return nil
}

func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// defaultReadPassword hides input on a terminal and reads a plain line otherwise,
// so piped input works.
func (c *cli) defaultReadPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
