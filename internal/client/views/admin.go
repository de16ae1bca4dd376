package views

import (
	"context"
	"strconv"
	"text/template"

	"github.com/dmitrijs2005/tubeboost/internal/client/models"
)

type adminView struct {
	tmpl *template.Template
}

func LoadAdmin() (View, error) {
	t, err := parse("orders.tmpl")
	if err != nil {
		return nil, err
	}
	return &adminView{tmpl: t}, nil
}

func (v *adminView) Name() string { return "admin" }

// Show is the order queue for administrators. Everyone else is sent home
// with ErrAccessDenied.
func (v *adminView) Show(ctx context.Context, env *Env) (string, error) {
	if !env.Session.IsAuthenticated() {
		return "/login", nil
	}
	if !env.Session.IsAdmin() {
		return "/", ErrAccessDenied
	}

	for {
		orders, err := env.Orders.AdminList(ctx)
		if err != nil {
			env.printf("Could not load orders: %s\n", describe(err))
			return "", nil
		}
		if err := renderOrders(env.Out, v.tmpl, "All orders", orders); err != nil {
			return "", err
		}

		raw, err := env.Prompt.Text("Order id to update (empty to finish)")
		if err != nil || raw == "" {
			return "", err
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			env.printf("Not an order id: %q\n", raw)
			continue
		}

		status, err := env.Prompt.Text("New status (waiting/in_progress/success/failed)")
		if err != nil {
			return "", err
		}

		var reason string
		if models.OrderStatus(status) == models.OrderStatusFailed {
			if reason, err = env.Prompt.Text("Fail reason"); err != nil {
				return "", err
			}
		}

		if _, err := env.Orders.SetStatus(ctx, id, models.OrderStatus(status), reason); err != nil {
			env.printf("Update failed: %s\n", describe(err))
			continue
		}
		env.printf("Order #%d is now %s.\n", id, status)
	}
}
