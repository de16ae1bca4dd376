package views

import (
	"context"
	"strconv"
	"text/template"

	"github.com/dmitrijs2005/tubeboost/internal/client/models"
)

type orderView struct {
	tmpl *template.Template
}

func LoadOrder() (View, error) {
	t, err := parse("orders.tmpl")
	if err != nil {
		return nil, err
	}
	return &orderView{tmpl: t}, nil
}

func (v *orderView) Name() string { return "order" }

// Show lists the user's orders and offers to place a new one.
func (v *orderView) Show(ctx context.Context, env *Env) (string, error) {
	if !env.Session.IsAuthenticated() {
		env.printf("Please sign in to place orders.\n")
		return "/login", nil
	}

	env.printf("Balance: %s\n\n", env.Session.Profile().Balance)

	orders, err := env.Orders.List(ctx)
	if err != nil {
		env.printf("Could not load your orders: %s\n", describe(err))
	} else if err := renderOrders(env.Out, v.tmpl, "Your orders", orders); err != nil {
		return "", err
	}

	answer, err := env.Prompt.Text("Place a new order? [y/N]")
	if err != nil || !yes(answer) {
		return "", err
	}

	o, ok, err := v.readOrder(env)
	if err != nil || !ok {
		return "", err
	}

	env.printf("This order costs %s.\n", o.Cost())
	answer, err = env.Prompt.Text("Confirm? [y/N]")
	if err != nil || !yes(answer) {
		return "", err
	}

	created, err := env.Orders.Place(ctx, o)
	if err != nil {
		env.printf("Order failed: %s\n", describe(err))
		return "", nil
	}

	env.printf("Order #%d placed, task %s. Balance: %s\n", created.ID, created.TaskID, env.Session.Profile().Balance)
	return "", nil
}

func (v *orderView) readOrder(env *Env) (models.NewOrder, bool, error) {
	var o models.NewOrder

	vt, err := env.Prompt.Text("Video type (video/shorts)")
	if err != nil {
		return o, false, err
	}
	o.VideoType = models.VideoType(vt)
	if !o.VideoType.Valid() {
		env.printf("Unknown video type %q.\n", vt)
		return o, false, nil
	}

	if o.VideoLink, err = env.Prompt.Text("Video link"); err != nil {
		return o, false, err
	}
	if o.Title, err = env.Prompt.Text("Title"); err != nil {
		return o, false, err
	}

	qty, err := env.Prompt.Text("Quantity")
	if err != nil {
		return o, false, err
	}
	o.Quantity, err = strconv.Atoi(qty)
	if err != nil || o.Quantity <= 0 {
		env.printf("Quantity must be a positive number.\n")
		return o, false, nil
	}

	return o, true, nil
}
