package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/wordmaster/internal/client/cli"
	"github.com/dmitrijs2005/wordmaster/internal/client/config"
	"github.com/dmitrijs2005/wordmaster/internal/client/localstore"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, localstore.ErrSchema) {
			fmt.Fprintln(os.Stderr, "cannot initialize local data:", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
