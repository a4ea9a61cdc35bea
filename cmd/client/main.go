package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/offlinefeed/internal/client/cli"
	"github.com/dmitrijs2005/offlinefeed/internal/client/config"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
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

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.New(cfg.LogBackend, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if z, ok := log.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(ctx)
}
