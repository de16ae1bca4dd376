package views

import (
	"context"

	"github.com/dmitrijs2005/tubeboost/internal/client/models"
)

type loginView struct{}

func LoadLogin() (View, error) {
	return &loginView{}, nil
}

func (v *loginView) Name() string { return "login" }

func (v *loginView) Show(ctx context.Context, env *Env) (string, error) {
	if env.Session.IsAuthenticated() {
		env.printf("Already signed in as %s.\n", env.Session.Profile().Username)
		return "/", nil
	}

	username, err := env.Prompt.Text("Username")
	if err != nil {
		return "", err
	}
	password, err := env.Prompt.Password("Password")
	if err != nil {
		return "", err
	}

	err = env.Session.Login(ctx, models.Credentials{"username": username, "password": password})
	if err != nil {
		env.printf("Login failed: %s\n", describe(err))
		return "", nil
	}

	env.printf("Welcome, %s!\n", env.Session.Profile().Username)
	return "/", nil
}
