// Package cli implements the Skycast command-line client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/skycast-dev/skycast-be/internal/client/api"
	"github.com/skycast-dev/skycast-be/internal/client/config"
	"github.com/skycast-dev/skycast-be/internal/client/session"
)

const usage = `Usage: skycastctl <command> [flags]

Commands:
  register   create a new account
  login      authenticate and store a session
  logout     clear the stored session
  whoami     show the authenticated account
  friends    list all accounts (requires login)
  status     check backend health and session state
`

// App wires the CLI commands to the API client and session store.
type App struct {
	cfg      *config.Config
	client   *api.Client
	sessions *session.Store
	out      io.Writer
}

// NewApp constructs the CLI application from config.
func NewApp(cfg *config.Config) *App {
	store := session.NewStore(cfg.SessionPath)
	return &App{
		cfg:      cfg,
		client:   api.New(cfg.ServerURL, store),
		sessions: store,
		out:      os.Stdout,
	}
}

// Run dispatches os.Args-style arguments to a command. Returns an error
// suitable for printing; the caller decides the exit code.
func (a *App) Run(args []string) error {
	if len(args) < 1 {
		fmt.Fprint(a.out, usage)
		return errors.New("no command given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch args[0] {
	case "register":
		return a.register(ctx, args[1:])
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami(ctx)
	case "friends":
		return a.friends(ctx)
	case "status":
		return a.status(ctx)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return errors.New("both -username and -email are required")
	}

	pw, err := a.resolvePassword(*password)
	if err != nil {
		return err
	}

	msg, err := a.client.Register(ctx, *username, *email, pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	pw, err := a.resolvePassword(*password)
	if err != nil {
		return err
	}

	sess, err := a.client.Login(ctx, *email, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", sess.User.Username, sess.User.Email)
	return nil
}

func (a *App) logout() error {
	// Clear local state first; there is no server-side session to tear down.
	if err := a.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	user, err := a.client.Me(ctx)
	if err != nil {
		return a.describeAuthFailure(err)
	}
	fmt.Fprintf(a.out, "%s <%s> (id %d, joined %s)\n",
		user.Username, user.Email, user.ID, user.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *App) friends(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	users, err := a.client.Users(ctx)
	if err != nil {
		return a.describeAuthFailure(err)
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%-20s %s\n", u.Username, u.Email)
	}
	return nil
}

func (a *App) status(ctx context.Context) error {
	if err := a.client.Health(ctx); err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	fmt.Fprintln(a.out, "backend: ok")
	if a.sessions.IsAuthenticated() {
		fmt.Fprintln(a.out, "session: active")
	} else {
		fmt.Fprintln(a.out, "session: none")
	}
	return nil
}

// requireSession is the local route guard: it refuses a protected command
// up front when no plausibly valid token is cached, without touching the
// network. It proves nothing -- the server verifies every request anyway.
func (a *App) requireSession() error {
	if !a.sessions.IsAuthenticated() {
		return errors.New("not logged in (run 'skycastctl login')")
	}
	return nil
}

// describeAuthFailure rewrites a server-side 401 into a friendlier message.
// The API client has already cleared the stale session at that point.
func (a *App) describeAuthFailure(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return errors.New("session expired or rejected; run 'skycastctl login' again")
	}
	return err
}

// resolvePassword returns the flag value or prompts on the terminal
// without echoing.
func (a *App) resolvePassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(a.out, "Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
