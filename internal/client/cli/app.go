package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/tubeboost/internal/client/client"
	"github.com/dmitrijs2005/tubeboost/internal/client/router"
	"github.com/dmitrijs2005/tubeboost/internal/client/services"
	"github.com/dmitrijs2005/tubeboost/internal/client/views"
	"github.com/dmitrijs2005/tubeboost/internal/logging"
)

// maxRedirects bounds how many screens one navigation may chain through.
const maxRedirects = 5

// Session is what the shell needs from the session store.
type Session interface {
	views.Session
	FetchProfile(ctx context.Context) error
}

// Resolver finds the screen for a path.
type Resolver interface {
	Resolve(ctx context.Context, path string) (views.View, error)
	Routes() []string
}

// Deps are the collaborators of an App.
type Deps struct {
	Session      Session
	Routes       Resolver
	Content      client.ContentAPI
	Orders       services.OrderService
	DeviceCookie func(ctx context.Context) (string, error)
	Log          logging.Logger

	// Backend is the API base URL shown by whoami.
	Backend string

	// In and Out default to stdin and stdout.
	In  io.Reader
	Out io.Writer
}

type App struct {
	session Session
	routes  Resolver
	env     *views.Env
	reader  *bufio.Reader
	out     io.Writer
	log     logging.Logger
	backend string
	current string
}

func NewApp(d Deps) *App {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Log == nil {
		d.Log = logging.Nop()
	}

	reader := bufio.NewReader(d.In)
	a := &App{
		session: d.Session,
		routes:  d.Routes,
		reader:  reader,
		out:     d.Out,
		log:     d.Log.With("component", "cli"),
		backend: d.Backend,
	}
	a.env = &views.Env{
		Session:      d.Session,
		Content:      d.Content,
		Orders:       d.Orders,
		Prompt:       &prompter{in: d.In, reader: reader, out: d.Out},
		Out:          d.Out,
		DeviceCookie: d.DeviceCookie,
		Log:          d.Log,
	}
	return a
}

// Run refreshes a rehydrated session, opens the start screen, and runs the
// REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to tubeboost (type 'help' for commands)")

	start := a.boot(ctx)
	_ = a.Navigate(ctx, start)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// boot picks the start screen. A rehydrated session is checked against the
// backend once; if that fails the session is gone and the user must sign in.
func (a *App) boot(ctx context.Context) string {
	if !a.session.IsAuthenticated() {
		return "/"
	}
	if err := a.session.FetchProfile(ctx); err != nil {
		a.log.Warn(ctx, "stored session rejected", "error", err)
		fmt.Fprintln(a.out, "Your session has expired, please sign in again.")
		return "/login"
	}
	return "/"
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// Navigate opens the screen at path and follows the redirects it returns.
func (a *App) Navigate(ctx context.Context, path string) error {
	for range maxRedirects {
		ctx := logging.WithFields(ctx, "path", path)

		view, err := a.routes.Resolve(ctx, path)
		if err != nil {
			if errors.Is(err, router.ErrNotFound) {
				fmt.Fprintf(a.out, "Page not found: %s\n", path)
			} else {
				fmt.Fprintf(a.out, "Could not open %s: %v\n", path, err)
			}
			return err
		}

		a.current = path
		next, err := view.Show(ctx, a.env)
		if err != nil {
			if errors.Is(err, views.ErrAccessDenied) {
				fmt.Fprintln(a.out, "Access denied.")
			} else {
				a.log.Error(ctx, "page failed", "error", err)
				fmt.Fprintf(a.out, "Error: %v\n", err)
			}
		}

		if next == "" || next == path {
			return err
		}
		path = next
	}

	a.log.Warn(ctx, "too many redirects", "last", path)
	return nil
}

func (a *App) getStatus() string {
	s := a.current
	if a.session.IsAuthenticated() {
		if name := a.session.Profile().Username; name != "" {
			s += " (" + name + ")"
		}
	}
	return s
}
