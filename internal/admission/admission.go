package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/programme-lv/contester/api"
	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/gate"
	"github.com/programme-lv/contester/internal/ranklist"
	"github.com/programme-lv/contester/internal/scoring"
	"github.com/programme-lv/contester/internal/store"
)

// ErrInvalidProblem means the judging system sent a submission for a problem
// the contest doesn't have. It points at an upstream consistency fault.
var ErrInvalidProblem = errors.New("problem is not part of the contest")

type Outcome int

const (
	// OutcomeFailed: the admission returned an error and changed nothing.
	OutcomeFailed Outcome = iota
	// OutcomeIgnored: the submission was made outside the contest window.
	OutcomeIgnored
	OutcomeApplied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeApplied:
		return "applied"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Notifier is told about every changed standing, in admission order per
// competitor.
type Notifier interface {
	StandingUpdated(ctx context.Context, ev api.StandingUpdated) error
}

type Coordinator struct {
	store    store.Store
	gate     *gate.Gate
	notifier Notifier
	logger   *slog.Logger
}

type Option func(*Coordinator)

func WithNotifier(n Notifier) Option {
	return func(co *Coordinator) { co.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(co *Coordinator) { co.logger = l }
}

// WithGate shares a gate between coordinators of the same process.
func WithGate(g *gate.Gate) Option {
	return func(co *Coordinator) { co.gate = g }
}

func New(s store.Store, opts ...Option) *Coordinator {
	co := &Coordinator{store: s}
	for _, opt := range opts {
		opt(co)
	}
	if co.gate == nil {
		co.gate = gate.New()
	}
	if co.logger == nil {
		co.logger = slog.Default()
	}
	return co
}

// Admit applies a judged submission to the competitor's score state and the
// contest ranklist. The contest argument is authoritative; s.ContestID is
// not consulted.
//
// Submissions outside [StartTime, EndTime) are ignored without error.
// TODO: decide with the judging system owners whether late replays should
// become an error instead of a silent no-op.
//
// Admit is not idempotent: admitting the same submission twice applies it
// twice.
func (co *Coordinator) Admit(ctx context.Context, c *contest.Contest, s contest.JudgedSubm) (Outcome, error) {
	log := co.logger.With(
		"admission_id", uuid.NewString(),
		"contest_id", c.ID,
		"competitor_id", s.CompetitorID,
		"problem_id", s.ProblemID,
	)

	if !c.InWindow(s.SubmitTime) {
		log.Debug("submission outside contest window",
			"submit_time", s.SubmitTime, "start_time", c.StartTime, "end_time", c.EndTime)
		return OutcomeIgnored, nil
	}
	if !c.Contains(s.ProblemID) {
		return OutcomeFailed, fmt.Errorf("%w: problem %d, contest %d", ErrInvalidProblem, s.ProblemID, c.ID)
	}
	s.ContestID = c.ID

	key := gate.Key{ContestID: c.ID, CompetitorID: s.CompetitorID}
	err := co.gate.WithLock(ctx, key, func() error {
		standing, err := co.apply(ctx, c, s)
		if err != nil {
			return err
		}
		log.Info("submission admitted",
			"verdict", s.Status, "score", standing.Score, "solved", standing.Solved)

		if co.notifier != nil {
			ev := api.NewStandingUpdated(c.ID, s.ID, standing)
			if err := co.notifier.StandingUpdated(ctx, ev); err != nil {
				// the admission stands once state is persisted
				log.Warn("failed to publish standing update", "err", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("admission failed", "err", err)
		return OutcomeFailed, err
	}
	return OutcomeApplied, nil
}

// AdmitByID loads the contest named by s.ContestID and admits s to it.
func (co *Coordinator) AdmitByID(ctx context.Context, s contest.JudgedSubm) (Outcome, error) {
	c, err := co.store.LoadContest(ctx, s.ContestID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to load contest: %w", err)
	}
	return co.Admit(ctx, c, s)
}

// apply must run under the competitor's gate.
func (co *Coordinator) apply(ctx context.Context, c *contest.Contest, s contest.JudgedSubm) (api.Standing, error) {
	p, err := co.store.LoadPlayer(ctx, c.ID, s.CompetitorID)
	if errors.Is(err, store.ErrNotFound) {
		p = contest.NewPlayer(c.ID, s.CompetitorID)
	} else if err != nil {
		return api.Standing{}, fmt.Errorf("failed to load player: %w", err)
	}

	rl, err := co.store.LoadRanklist(ctx, c.ID)
	if errors.Is(err, store.ErrNotFound) {
		rl = ranklist.New(c.ID)
	} else if err != nil {
		return api.Standing{}, fmt.Errorf("failed to load ranklist: %w", err)
	}

	rule := scoring.For(c.Type)
	p.Results[s.ProblemID] = rule.Apply(p.Result(s.ProblemID), s)
	rl.UpdatePlayer(c, p)

	// player and entry are written together or not at all
	if err := co.store.SaveAdmission(ctx, p, rl); err != nil {
		return api.Standing{}, fmt.Errorf("failed to save admission: %w", err)
	}

	e, _ := rl.Entry(s.CompetitorID)
	return ranklist.Standing(c, e), nil
}
