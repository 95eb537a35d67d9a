package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/programme-lv/contester/internal/environment"
	"github.com/programme-lv/contester/internal/store"
	"github.com/programme-lv/contester/internal/store/memstore"
	"github.com/programme-lv/contester/internal/store/pgstore"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "contester",
		Usage: "admit judged submissions into contest ranklists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "TOML config file (default: " + environment.DefaultPath() + ")",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "overrides log.level from the config",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			replayCmd(),
			exportCmd(),
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("contester failed", "err", err)
		os.Exit(1)
	}
}

// setup loads the configuration and installs the default logger.
func setup(cmd *cli.Command) (environment.Config, *slog.Logger, error) {
	cfg, err := environment.Load(cmd.String("config"))
	if err != nil {
		return cfg, nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return cfg, nil, err
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openStore returns Postgres when configured and an in-memory store otherwise.
func openStore(ctx context.Context, cfg environment.PostgresConfig, logger *slog.Logger) (store.Store, func(), error) {
	if cfg.URL == "" {
		logger.Warn("no postgres configured, standings live in memory only")
		return memstore.New(), func() {}, nil
	}

	connCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	pg, err := pgstore.Connect(connCtx, cfg.URL, cfg.MaxConns, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Migrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
	}
	return pg, pg.Close, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func usageErr(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), 2)
}
