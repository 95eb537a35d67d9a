package natsnotify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/contester/api"
)

// Publisher streams standing updates to <prefix>.<contest_id>, so a
// ranklist view can subscribe to exactly one contest.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

func New(nc *nats.Conn, prefix string) *Publisher {
	return &Publisher{nc: nc, prefix: prefix}
}

func (p *Publisher) Subject(contestID int64) string {
	return fmt.Sprintf("%s.%d", p.prefix, contestID)
}

func (p *Publisher) StandingUpdated(_ context.Context, ev api.StandingUpdated) error {
	return p.send(p.Subject(ev.ContestID), ev)
}

func (p *Publisher) send(subject string, msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := p.nc.Publish(subject, b); err != nil {
		return fmt.Errorf("failed to publish message to NATS: %w", err)
	}
	return nil
}
