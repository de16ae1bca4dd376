package views

import (
	"context"
	"text/template"

	"github.com/dmitrijs2005/tubeboost/internal/client/models"
)

type homeView struct {
	tmpl *template.Template
}

// LoadHome builds the landing screen.
func LoadHome() (View, error) {
	t, err := parse("home.tmpl")
	if err != nil {
		return nil, err
	}
	return &homeView{tmpl: t}, nil
}

func (v *homeView) Name() string { return "home" }

// Show renders the landing content. Content that fails to load is skipped.
func (v *homeView) Show(ctx context.Context, env *Env) (string, error) {
	data := struct {
		Config  *models.HomeConfig
		FAQs    []models.FAQ
		Signed  bool
		Profile models.UserProfile
		Avatar  string
	}{
		Signed:  env.Session.IsAuthenticated(),
		Profile: env.Session.Profile(),
		Avatar:  env.Session.UserAvatar(),
	}

	cfg, err := env.Content.HomeConfig(ctx)
	if err != nil {
		env.logger().Warn(ctx, "home config unavailable", "error", err)
	}
	data.Config = cfg

	faqs, err := env.Content.FAQs(ctx)
	if err != nil {
		env.logger().Warn(ctx, "faqs unavailable", "error", err)
	}
	data.FAQs = faqs

	return "", v.tmpl.Execute(env.Out, data)
}
