package natsing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/contester/internal/ingest"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Subject string
	// Queue group shared by all contester instances so each message is
	// admitted once.
	Queue   string
	Workers int
	// Core NATS doesn't redeliver, so retryable failures are retried here.
	MaxAttempts int
	Backoff     time.Duration
}

type Subscriber struct {
	nc      *nats.Conn
	handler *ingest.Handler
	cfg     Config
	logger  *slog.Logger
}

func New(nc *nats.Conn, h *ingest.Handler, cfg Config, logger *slog.Logger) *Subscriber {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{nc: nc, handler: h, cfg: cfg, logger: logger}
}

// Run consumes messages until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	ch := make(chan *nats.Msg, s.cfg.Workers*8)
	sub, err := s.nc.ChanQueueSubscribe(s.cfg.Subject, s.cfg.Queue, ch)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.cfg.Subject, err)
	}
	s.logger.Info("listening for judged submissions",
		"subject", s.cfg.Subject, "queue", s.cfg.Queue, "workers", s.cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for range s.cfg.Workers {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case msg := <-ch:
					s.handle(gctx, msg)
				}
			}
		})
	}
	err = g.Wait()

	if uerr := sub.Unsubscribe(); uerr != nil {
		s.logger.Warn("failed to unsubscribe", "subject", s.cfg.Subject, "err", uerr)
	}
	return err
}

func (s *Subscriber) handle(ctx context.Context, msg *nats.Msg) {
	for attempt := 1; ; attempt++ {
		err := s.handler.Handle(ctx, msg.Data)
		retry := s.handler.Report(err, "subject", msg.Subject, "attempt", attempt)
		if !retry || attempt >= s.cfg.MaxAttempts {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.Backoff * time.Duration(attempt)):
		}
	}
}
