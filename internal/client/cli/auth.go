package cli

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/client/client"
	"github.com/dmitrijs2005/wordmaster/internal/common"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Register prompts for the account fields and creates the account on the
// server. Success logs the user in. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	req := api.RegisterRequest{Username: userName, Email: email, Password: string(password)}
	if err := validate.Struct(req); err != nil {
		return err
	}

	sess, err := a.authService.Register(ctx, req)
	if err != nil {
		return err
	}
	a.setSession(sess)
	a.setMode(ModeOnline)
	printlnFn(okStyle.Render("Account created, welcome " + sess.User.DisplayName() + "!"))
	return nil
}

// Login tries an online login first. If the server is unavailable it falls
// back to the account mirrored by an earlier online login; such a session
// works with local data only.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.authService.OnlineLogin(ctx, userName, password)
	if err != nil {
		if !errors.Is(err, client.ErrUnavailable) {
			return err
		}
		a.log.Info(ctx, "server unavailable, trying offline login", "error", err)
		printlnFn(warnStyle.Render("Server unavailable, trying offline login..."))

		sess, err = a.authService.OfflineLogin(ctx, userName, password)
		if err != nil {
			return err
		}
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}

	a.setSession(sess)
	printlnFn(okStyle.Render("Welcome, " + sess.User.DisplayName()))
	if !sess.Online {
		printlnFn(mutedStyle.Render("Offline session: sync is disabled until the next online login."))
	}
	return nil
}

// Logout forgets the saved session. Local learning data stays on disk.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setSession(nil)
	printlnFn("Logged out")
	return nil
}
