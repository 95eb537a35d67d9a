package behave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/programme-lv/contester/internal/admission"
	"github.com/programme-lv/contester/internal/ranklist"
	"github.com/programme-lv/contester/internal/scoring"
	"github.com/programme-lv/contester/internal/store"
	"github.com/programme-lv/contester/internal/store/memstore"
)

// Result is what replaying a case produced.
type Result struct {
	Rows []ranklist.Row
	// Human readable expectation mismatches, empty when the case passed.
	Failures []string
}

func (r Result) Passed() bool { return len(r.Failures) == 0 }

// Run replays a case against a fresh in-memory store.
func Run(ctx context.Context, tc Case, logger *slog.Logger) (Result, error) {
	s := memstore.New()
	if err := s.SaveContest(ctx, tc.Contest); err != nil {
		return Result{}, err
	}
	co := admission.New(s, admission.WithLogger(logger))

	var res Result
	for i, step := range tc.Steps {
		out, err := co.Admit(ctx, tc.Contest, step.Subm)

		got := out.String()
		switch {
		case errors.Is(err, admission.ErrInvalidProblem):
			got = ExpectInvalidProblem
		case err != nil:
			return res, fmt.Errorf("submission %d: %w", i+1, err)
		}
		if got != step.Expect {
			res.Failures = append(res.Failures,
				fmt.Sprintf("submission %d: expected %s, got %s", i+1, step.Expect, got))
		}
	}

	rl, err := s.LoadRanklist(ctx, tc.Contest.ID)
	if errors.Is(err, store.ErrNotFound) {
		rl = ranklist.New(tc.Contest.ID)
	} else if err != nil {
		return res, err
	}
	res.Rows = rl.Ranked(scoring.For(tc.Contest.Type))

	byCompetitor := make(map[int64]ranklist.Row, len(res.Rows))
	for _, r := range res.Rows {
		byCompetitor[r.CompetitorID] = r
	}
	for _, want := range tc.Standings {
		row, ok := byCompetitor[want.Competitor]
		if !ok {
			res.Failures = append(res.Failures, fmt.Sprintf("competitor %d: missing from ranklist", want.Competitor))
			continue
		}
		res.Failures = append(res.Failures, compare(want, row)...)
	}
	return res, nil
}

func compare(want ExpectedStanding, got ranklist.Row) []string {
	var out []string
	check := func(field string, exp *int64, act int64) {
		if exp != nil && *exp != act {
			out = append(out, fmt.Sprintf("competitor %d: expected %s %d, got %d",
				want.Competitor, field, *exp, act))
		}
	}
	check("rank", intPtr(want.Rank), int64(got.Rank))
	check("score", intPtr(want.Score), int64(got.Score))
	check("solved", intPtr(want.Solved), int64(got.Solved))
	check("penalty", want.Penalty, got.Penalty)
	return out
}

func intPtr(v *int) *int64 {
	if v == nil {
		return nil
	}
	w := int64(*v)
	return &w
}
