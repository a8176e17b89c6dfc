package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are test seams for interactive input.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Registered %s (%s), you can log in now", u.UserName, u.Email))
	return nil
}

func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	res, err := a.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	a.userName = res.User.UserName
	printlnFn(fmt.Sprintf("Logged in as %s, session valid for %ds", a.userName, res.ExpiresIn))
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	u, err := a.api.Verify(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%s <%s> id=%s", u.UserName, u.Email, u.ID))
	return nil
}

// Logout forgets the token locally; the server keeps no session state.
func (a *App) Logout(_ context.Context) error {
	a.api.SetToken("")
	a.userName = ""
	printlnFn("Logged out")
	return nil
}
