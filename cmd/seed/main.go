package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/wordmaster/internal/logging"
	"github.com/dmitrijs2005/wordmaster/internal/seed"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := seed.LoadConfig(".env", os.Args[1:])
	if err != nil {
		return err
	}
	log, err := logging.NewTextLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	return seed.Run(ctx, cfg, log)
}
