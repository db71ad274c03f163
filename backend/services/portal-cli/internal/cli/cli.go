// Package cli implements the portal-cli commands on top of the auth client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"docportal/backend/libs/authclient"
	"docportal/backend/libs/filtertabs"
	"docportal/backend/libs/httpclient"
	"docportal/backend/services/portal-cli/internal/config"
	"docportal/backend/services/portal-cli/internal/session"
)

const usage = `usage: portal-cli [flags] <command> [command flags]

commands:
  login -email EMAIL [-password PASSWORD]   start a session (password read from stdin when omitted)
  logout                                    end the session and forget it locally
  whoami                                    show the logged-in user
  filter [-tabs a,b,c] [-active a] [-static] pick a document filter

flags:
  -base-url URL       portal address (PORTAL_BASE_URL)
  -session-file PATH  where the session is kept (PORTAL_SESSION_FILE)
`

var errUsage = errors.New("usage")

// App runs one command per Run call.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	doer   httpclient.HTTPDoer
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New builds an App. HTTP goes through a default client with the configured timeout.
func New(cfg *config.Config, logger *zap.Logger, stdin io.Reader, stdout, stderr io.Writer) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		doer:   httpclient.NewDefaultHTTPClient(cfg.Server.Timeout),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// Run executes args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	global := flag.NewFlagSet("portal-cli", flag.ContinueOnError)
	global.SetOutput(a.stderr)
	global.Usage = func() { fmt.Fprint(a.stderr, usage) }
	baseURL := global.String("base-url", a.cfg.Server.BaseURL, "portal address")
	sessionFile := global.String("session-file", a.cfg.Session.File, "session file")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	a.cfg.Server.BaseURL = strings.TrimRight(*baseURL, "/")
	a.cfg.Session.File = *sessionFile

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(a.stderr, usage)
		return 2
	}

	var err error
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "login":
		err = a.login(ctx, cmdArgs)
	case "logout":
		err = a.logout(ctx, cmdArgs)
	case "whoami":
		err = a.whoami(ctx, cmdArgs)
	case "filter":
		err = a.filter(cmdArgs)
	case "help":
		fmt.Fprint(a.stdout, usage)
		return 0
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		a.report(err)
		return 1
	}
}

func (a *App) report(err error) {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.Message()
		if msg == "" {
			msg = http.StatusText(statusErr.StatusCode)
		}
		fmt.Fprintf(a.stderr, "error: %d: %s\n", statusErr.StatusCode, msg)
		return
	}
	fmt.Fprintf(a.stderr, "error: %v\n", err)
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *App) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.stderr, "%s: unexpected argument %q\n", fs.Name(), fs.Arg(0))
		return errUsage
	}
	return nil
}

func (a *App) store() *session.Store {
	return session.NewStore(a.cfg.Session.File)
}

// connect builds the auth client, seeding the cookie jar from sess when present.
func (a *App) connect(sess *session.Session) (*authclient.AuthService, *httpclient.Client, error) {
	client, err := httpclient.New(a.cfg.Server.BaseURL, a.doer,
		httpclient.WithLogger(a.logger),
		httpclient.WithRetry(a.cfg.Server.Retries, a.cfg.Server.RetryWait),
	)
	if err != nil {
		return nil, nil, err
	}
	if sess != nil {
		client.SetCookies(sess.HTTPCookies())
	}
	return authclient.NewAuthService(client), client, nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(a.stderr, "login: -email is required")
		return errUsage
	}
	if *password == "" {
		line, err := bufio.NewReader(a.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	auth, client, err := a.connect(nil)
	if err != nil {
		return err
	}
	user, err := auth.Login(ctx, authclient.LoginRequest{"email": *email, "password": *password})
	if err != nil {
		return err
	}

	cookies := client.Cookies()
	if len(cookies) == 0 {
		a.logger.Warn("server did not set a session cookie; session not saved")
	} else {
		store := a.store()
		err := store.Save(&session.Session{
			BaseURL: a.cfg.Server.BaseURL,
			User:    *email,
			SavedAt: time.Now().UTC(),
			Cookies: session.FromHTTPCookies(cookies),
		})
		if err != nil {
			return err
		}
		a.logger.Debug("session saved", zap.String("path", store.Path()))
	}

	fmt.Fprintf(a.stdout, "logged in as %s\n", *email)
	return a.printUser(user)
}

func (a *App) whoami(ctx context.Context, args []string) error {
	if err := a.parse(a.newFlagSet("whoami"), args); err != nil {
		return err
	}
	store := a.store()
	sess, err := store.Load()
	if err != nil {
		return err
	}
	if sess.BaseURL != a.cfg.Server.BaseURL {
		return fmt.Errorf("saved session belongs to %s, log in to %s first", sess.BaseURL, a.cfg.Server.BaseURL)
	}

	auth, _, err := a.connect(sess)
	if err != nil {
		return err
	}
	user, err := auth.CurrentUser(ctx)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusUnauthorized) {
			if clearErr := store.Clear(); clearErr != nil {
				a.logger.Warn("failed to drop expired session", zap.Error(clearErr))
			}
		}
		return err
	}
	return a.printUser(user)
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := a.parse(a.newFlagSet("logout"), args); err != nil {
		return err
	}
	store := a.store()
	sess, err := store.Load()
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		a.logger.Warn("ignoring unreadable session file", zap.String("path", store.Path()), zap.Error(err))
	}
	if sess != nil && sess.BaseURL != a.cfg.Server.BaseURL {
		sess = nil
	}

	auth, _, err := a.connect(sess)
	if err != nil {
		return err
	}
	msg, logoutErr := auth.Logout(ctx)
	if err := store.Clear(); err != nil {
		return err
	}
	if logoutErr != nil {
		return logoutErr
	}

	if msg.Message == "" {
		msg.Message = "logged out"
	}
	fmt.Fprintln(a.stdout, msg.Message)
	return nil
}

func (a *App) filter(args []string) error {
	fs := a.newFlagSet("filter")
	tabs := fs.String("tabs", strings.Join(a.cfg.Filter.Tabs, ","), "comma separated filter labels")
	active := fs.String("active", a.cfg.Filter.Active, "initially active filter")
	static := fs.Bool("static", false, "print the tab bar and exit")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	labels := splitTabs(*tabs)
	if len(labels) == 0 {
		fmt.Fprintln(a.stderr, "filter: -tabs must name at least one filter")
		return errUsage
	}

	if *static {
		fmt.Fprintln(a.stdout, filtertabs.Bar{Tabs: labels, Active: *active}.View())
		return nil
	}

	chosen, err := filtertabs.Pick(labels, *active, func(tab string) {
		a.logger.Debug("filter changed", zap.String("tab", tab))
	}, tea.WithInput(a.stdin), tea.WithOutput(a.stderr))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, chosen)
	return nil
}

func splitTabs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (a *App) printUser(user authclient.UserDTO) error {
	if len(user) == 0 {
		return nil
	}
	data, err := yaml.Marshal(map[string]any(user))
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(data)
	return err
}
