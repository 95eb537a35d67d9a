package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/nats-io/nats.go"
	"github.com/programme-lv/contester/internal/admission"
	"github.com/programme-lv/contester/internal/ingest"
	"github.com/programme-lv/contester/internal/ingest/natsing"
	"github.com/programme-lv/contester/internal/ingest/sqsing"
	"github.com/programme-lv/contester/internal/notify/natsnotify"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "consume judged submissions and keep ranklists up to date",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Value: "nats",
				Usage: "where judged submissions come from: nats or sqs",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "concurrent admissions (default from config)",
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if w := cmd.Int("workers"); w > 0 {
		cfg.Ingest.Workers = int(w)
	}

	source := cmd.String("source")
	if source != "nats" && source != "sqs" {
		return usageErr("unknown source %q, want nats or sqs", source)
	}

	st, closeStore, err := openStore(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var nc *nats.Conn
	if source == "nats" || cfg.NATS.NotifyPrefix != "" {
		nc, err = nats.Connect(cfg.NATS.URL, nats.Name("contester"))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Drain()
	}

	opts := []admission.Option{admission.WithLogger(logger)}
	if cfg.NATS.NotifyPrefix != "" {
		opts = append(opts, admission.WithNotifier(natsnotify.New(nc, cfg.NATS.NotifyPrefix)))
	}
	handler := ingest.NewHandler(admission.New(st, opts...), logger)

	switch source {
	case "sqs":
		if cfg.SQS.QueueURL == "" {
			return usageErr("sqs.queue_url is not configured")
		}
		loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.SQS.Region)}
		if cfg.SQS.Profile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.SQS.Profile))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return fmt.Errorf("unable to load SDK config: %w", err)
		}
		poller := sqsing.New(sqs.NewFromConfig(awsCfg), handler, sqsing.Config{
			QueueURL:        cfg.SQS.QueueURL,
			Workers:         cfg.Ingest.Workers,
			WaitTimeSeconds: cfg.SQS.WaitTimeSeconds,
		}, logger)
		return ignoreCanceled(poller.Run(ctx))
	default:
		sub := natsing.New(nc, handler, natsing.Config{
			Subject:     cfg.NATS.Subject,
			Queue:       cfg.NATS.Queue,
			Workers:     cfg.Ingest.Workers,
			MaxAttempts: cfg.Ingest.MaxAttempts,
			Backoff:     cfg.Ingest.Backoff(),
		}, logger)
		return ignoreCanceled(sub.Run(ctx))
	}
}
