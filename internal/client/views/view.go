// Package views implements the terminal screens of the client, one per
// route. A screen renders itself to the shell's output, may prompt for
// input, and tells the shell where to go next.
//
// Screens are constructed by loader functions so the route table can defer
// parsing their templates until the first navigation.
package views

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/dmitrijs2005/tubeboost/internal/client/client"
	"github.com/dmitrijs2005/tubeboost/internal/client/models"
	"github.com/dmitrijs2005/tubeboost/internal/client/services"
	"github.com/dmitrijs2005/tubeboost/internal/logging"
)

// ErrAccessDenied is returned by screens the current user may not open.
var ErrAccessDenied = errors.New("access denied")

//go:embed templates/*.tmpl
var templates embed.FS

// View is a single screen.
type View interface {
	// Name is a short human label.
	Name() string
	// Show renders the screen and runs its interaction. A non-empty redirect
	// asks the shell to navigate there next.
	Show(ctx context.Context, env *Env) (redirect string, err error)
}

// Session is the part of the session store screens use.
type Session interface {
	Login(ctx context.Context, creds models.Credentials) error
	Register(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	IsAdmin() bool
	UserAvatar() string
	Profile() models.UserProfile
}

// Prompter reads user input. Password must not echo.
type Prompter interface {
	Text(prompt string) (string, error)
	Password(prompt string) (string, error)
}

// Env is everything a screen may touch.
type Env struct {
	Session      Session
	Content      client.ContentAPI
	Orders       services.OrderService
	Prompt       Prompter
	Out          io.Writer
	DeviceCookie func(ctx context.Context) (string, error)
	Log          logging.Logger
}

func (e *Env) logger() logging.Logger {
	if e.Log == nil {
		return logging.Nop()
	}
	return e.Log
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"indent": func(n int, s string) string {
		pad := strings.Repeat(" ", n)
		return pad + strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n"+pad)
	},
}

func parse(name string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).ParseFS(templates, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", name, err)
	}
	return t, nil
}

// describe turns an action error into a line for the user, preferring the
// backend's own message.
func describe(err error) string {
	var he *client.HTTPError
	switch {
	case client.IsHTTPStatus(err, http.StatusUnauthorized):
		return "your session has expired, please sign in again"
	case errors.Is(err, services.ErrLoginSuperseded):
		return "another sign-in or sign-out replaced this one"
	case errors.As(err, &he):
		if d := he.Detail(); d != "" {
			return d
		}
		return he.Error()
	case errors.Is(err, client.ErrUnavailable):
		return "the server is unavailable, try again later"
	}
	return err.Error()
}

func yes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
