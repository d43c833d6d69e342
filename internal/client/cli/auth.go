package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasklist/internal/client/models"
	"github.com/dmitrijs2005/tasklist/internal/common"
)

func (a *App) askCredentials() (string, []byte, error) {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

func (a *App) authenticate(ctx context.Context, call func(ctx context.Context, email, password string) (*models.User, error)) error {
	email, password, err := a.askCredentials()
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	user, err := call(ctx, email, string(password))
	if err != nil {
		return a.report(err)
	}

	a.email = user.Email
	fmt.Fprintf(a.out, "Logged in as %s\n", user.Email)
	return nil
}

func (a *App) Signup(ctx context.Context) error {
	return a.authenticate(ctx, a.client.Signup)
}

func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, a.client.Login)
}

func (a *App) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	a.email = ""
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
