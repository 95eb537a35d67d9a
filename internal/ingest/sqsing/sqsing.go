package sqsing

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/programme-lv/contester/internal/ingest"
	"golang.org/x/sync/errgroup"
)

// API is the part of *sqs.Client the poller uses.
type API interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type Config struct {
	QueueURL string
	Workers  int
	// Long polling wait, at most 20 seconds.
	WaitTimeSeconds int32
	MaxMessages     int32
}

type Poller struct {
	client  API
	handler *ingest.Handler
	cfg     Config
	logger  *slog.Logger
}

func New(client API, h *ingest.Handler, cfg Config, logger *slog.Logger) *Poller {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxMessages <= 0 || cfg.MaxMessages > 10 {
		cfg.MaxMessages = 10
	}
	if cfg.WaitTimeSeconds < 0 || cfg.WaitTimeSeconds > 20 {
		cfg.WaitTimeSeconds = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{client: client, handler: h, cfg: cfg, logger: logger}
}

// Run polls the queue until ctx is done, then waits for in-flight messages.
// Messages that fail with a retryable error are left on the queue and come
// back after their visibility timeout.
func (p *Poller) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)

	p.logger.Info("polling for judged submissions", "queue_url", p.cfg.QueueURL, "workers", p.cfg.Workers)
	for ctx.Err() == nil {
		out, err := p.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(p.cfg.QueueURL),
			MaxNumberOfMessages: p.cfg.MaxMessages,
			WaitTimeSeconds:     p.cfg.WaitTimeSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("failed to receive messages", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, msg := range out.Messages {
			g.Go(func() error {
				p.process(ctx, msg)
				return nil
			})
		}
	}
	return g.Wait()
}

func (p *Poller) process(ctx context.Context, msg types.Message) {
	err := p.handler.Handle(ctx, []byte(aws.ToString(msg.Body)))
	if p.handler.Report(err, "message_id", aws.ToString(msg.MessageId)) {
		return
	}

	// the admission already happened; don't let shutdown skip the delete
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	_, err = p.client.DeleteMessage(delCtx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.cfg.QueueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		p.logger.Error("failed to delete message", "message_id", aws.ToString(msg.MessageId), "err", err)
	}
}
