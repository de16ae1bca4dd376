package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Navigate(ctx context.Context, path string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ListRoutes(ctx context.Context) error
}

// runREPL reads commands from reader and dispatches them to a until EOF,
// "exit" or "quit". The prompt and REPL messages are written to w.
//
// Command handlers print their own messages, so their errors are not
// reported again here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "tb %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: go <path>, routes, whoami, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: go <path>, routes, login, register, exit")
			}

		case "go":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: go <path>")
				continue
			}
			_ = a.Navigate(ctx, args[0])

		case "login":
			_ = a.Navigate(ctx, "/login")

		case "register":
			_ = a.Navigate(ctx, "/register")

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "routes":
			_ = a.ListRoutes(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
