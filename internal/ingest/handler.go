// Package ingest turns judging-system messages into admissions. The
// transport subpackages only move bytes; Handler decides what a message
// means and whether a failure is worth another delivery.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/programme-lv/contester/api"
	"github.com/programme-lv/contester/internal/admission"
	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/store"
)

var ErrMalformed = errors.New("malformed judged submission")

// Admitter is implemented by *admission.Coordinator.
type Admitter interface {
	AdmitByID(ctx context.Context, s contest.JudgedSubm) (admission.Outcome, error)
}

type Handler struct {
	admitter Admitter
	logger   *slog.Logger
}

func NewHandler(a Admitter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{admitter: a, logger: logger}
}

// Handle decodes and admits one message body.
func (h *Handler) Handle(ctx context.Context, body []byte) error {
	msg, err := Decode(body)
	if err != nil {
		return err
	}
	_, err = h.admitter.AdmitByID(ctx, contest.JudgedSubmFromAPI(msg))
	return err
}

func Decode(body []byte) (api.JudgedSubm, error) {
	var msg api.JudgedSubm
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	switch {
	case msg.ContestID == 0:
		return msg, fmt.Errorf("%w: missing contest_id", ErrMalformed)
	case msg.CompetitorID == 0:
		return msg, fmt.Errorf("%w: missing competitor_id", ErrMalformed)
	case !msg.Verdict.IsKnown():
		return msg, fmt.Errorf("%w: unknown verdict %q", ErrMalformed, msg.Verdict)
	}
	return msg, nil
}

// Retryable reports whether redelivering the message could succeed. Bad
// payloads and references to contests or problems that don't exist never
// will.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	for _, permanent := range []error{
		ErrMalformed,
		admission.ErrInvalidProblem,
		store.ErrNotFound,
		contest.ErrUnknownType,
		contest.ErrInvalidWindow,
	} {
		if errors.Is(err, permanent) {
			return false
		}
	}
	return true
}

// Report logs a handling failure at a level matching its class and returns
// whether the message should be redelivered.
func (h *Handler) Report(err error, attrs ...any) (retry bool) {
	if err == nil {
		return false
	}
	attrs = append(attrs, "err", err)
	if Retryable(err) {
		h.logger.Error("failed to handle judged submission, will retry", attrs...)
		return true
	}
	h.logger.Warn("dropping judged submission", attrs...)
	return false
}
