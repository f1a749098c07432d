package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wordmaster/internal/client/services"
)

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.session != nil {
		s = a.session.User.Username + " "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root resumes a saved session, starts the connectivity watcher and runs
// the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn(titleStyle.Render("Welcome to wordmaster (type 'help' for commands)"))

	sess, err := a.authService.Restore(ctx)
	switch {
	case err == nil:
		a.setSession(sess)
		printlnFn(okStyle.Render("Welcome back, " + sess.User.DisplayName()))
	case errors.Is(err, services.ErrNoSession):
		printlnFn(mutedStyle.Render("Type 'login' or 'register' to start."))
	default:
		a.log.Warn(ctx, "error restoring session", "error", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
