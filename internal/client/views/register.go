package views

import (
	"context"

	"github.com/dmitrijs2005/tubeboost/internal/client/models"
)

type registerView struct{}

func LoadRegister() (View, error) {
	return &registerView{}, nil
}

func (v *registerView) Name() string { return "register" }

// Show collects the registration form. Fields are sent as typed; the
// backend validates them.
func (v *registerView) Show(ctx context.Context, env *Env) (string, error) {
	if env.Session.IsAuthenticated() {
		env.printf("Sign out before creating another account.\n")
		return "/", nil
	}

	creds := models.Credentials{}
	for _, f := range []struct{ key, prompt string }{
		{"username", "Username"},
		{"email", "Email"},
	} {
		v, err := env.Prompt.Text(f.prompt)
		if err != nil {
			return "", err
		}
		creds[f.key] = v
	}

	for _, f := range []struct{ key, prompt string }{
		{"password", "Password"},
		{"confirm_password", "Confirm password"},
	} {
		v, err := env.Prompt.Password(f.prompt)
		if err != nil {
			return "", err
		}
		creds[f.key] = v
	}

	if env.DeviceCookie != nil {
		cookie, err := env.DeviceCookie(ctx)
		if err != nil {
			return "", err
		}
		creds["registration_cookie"] = cookie
	}

	if err := env.Session.Register(ctx, creds); err != nil {
		env.printf("Registration failed: %s\n", describe(err))
		return "", nil
	}

	env.printf("Account created. Please sign in.\n")
	return "/login", nil
}
