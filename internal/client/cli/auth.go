package cli

import (
	"context"
	"fmt"
)

// Logout ends the session and returns to the home screen.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.log.Error(ctx, "logout failed", "error", err)
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return a.Navigate(ctx, "/")
}

// WhoAmI prints the signed-in user and the backend in use.
func (a *App) WhoAmI(_ context.Context) error {
	if a.session.IsAuthenticated() {
		p := a.session.Profile()
		role := "user"
		if a.session.IsAdmin() {
			role = "admin"
		}
		fmt.Fprintf(a.out, "%s (%s)\nBalance: %s\nAvatar:  %s\n", p.Username, role, p.Balance, a.session.UserAvatar())
	} else {
		fmt.Fprintln(a.out, "Not signed in.")
	}
	if a.backend != "" {
		fmt.Fprintf(a.out, "Server:  %s\n", a.backend)
	}
	return nil
}

// ListRoutes prints the navigable paths.
func (a *App) ListRoutes(_ context.Context) error {
	for _, p := range a.routes.Routes() {
		fmt.Fprintln(a.out, " ", p)
	}
	return nil
}
