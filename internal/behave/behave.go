package behave

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/contester/api"
	"github.com/programme-lv/contester/internal/contest"
)

// Expected outcomes of a single submission.
const (
	ExpectApplied        = "applied"
	ExpectIgnored        = "ignored"
	ExpectInvalidProblem = "invalid_problem"
)

// ScenarioContest is the contest block of a scenario
type ScenarioContest struct {
	ID        int64   `toml:"id"`
	Title     string  `toml:"title"`
	Type      string  `toml:"type"`
	StartTime int64   `toml:"start_time"`
	EndTime   int64   `toml:"end_time"`
	Problems  []int64 `toml:"problems"`
	Admins    []int64 `toml:"admins"`
	HolderID  int64   `toml:"holder_id"`
}

// ScenarioSubmission is one judged submission fed to the coordinator in order
type ScenarioSubmission struct {
	Competitor int64  `toml:"competitor"`
	Problem    int64  `toml:"problem"`
	Time       int64  `toml:"time"`
	Verdict    string `toml:"verdict"`
	Score      int    `toml:"score"`
	// One of applied, ignored, invalid_problem. Empty means applied.
	Expect string `toml:"expect"`
}

// ExpectedStanding is an expected ranklist row; unset fields aren't checked
type ExpectedStanding struct {
	Competitor int64  `toml:"competitor"`
	Rank       *int   `toml:"rank"`
	Score      *int   `toml:"score"`
	Solved     *int   `toml:"solved"`
	Penalty    *int64 `toml:"penalty"`
}

type scenarioBlock struct {
	Description string               `toml:"description"`
	Contest     ScenarioContest      `toml:"contest"`
	Submissions []ScenarioSubmission `toml:"submissions"`
	Standings   []ExpectedStanding   `toml:"standings"`
}

type scenarioFile struct {
	Scenarios []scenarioBlock `toml:"scenarios"`
}

// Step is a submission with the outcome it should have
type Step struct {
	Subm   contest.JudgedSubm
	Expect string
}

// Case is a runnable scenario converted from TOML
type Case struct {
	Name      string
	Contest   *contest.Contest
	Steps     []Step
	Standings []ExpectedStanding
}

// Parse reads a scenario TOML file and converts it to runnable cases
func Parse(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	var root scenarioFile
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cases := make([]Case, 0, len(root.Scenarios))
	for i, sc := range root.Scenarios {
		name := sc.Description
		if name == "" {
			name = fmt.Sprintf("scenario %d", i+1)
		}

		typ, err := contest.ParseType(sc.Contest.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		c, err := contest.New(contest.Config{
			ID:        sc.Contest.ID,
			Title:     sc.Contest.Title,
			StartTime: sc.Contest.StartTime,
			EndTime:   sc.Contest.EndTime,
			Type:      typ,
			Problems:  sc.Contest.Problems,
			Admins:    sc.Contest.Admins,
			HolderID:  sc.Contest.HolderID,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		steps := make([]Step, 0, len(sc.Submissions))
		for _, s := range sc.Submissions {
			verdict := api.Verdict(s.Verdict)
			if !verdict.IsKnown() {
				return nil, fmt.Errorf("%s: unknown verdict %q", name, s.Verdict)
			}
			expect := s.Expect
			switch expect {
			case "":
				expect = ExpectApplied
			case ExpectApplied, ExpectIgnored, ExpectInvalidProblem:
			default:
				return nil, fmt.Errorf("%s: unknown expectation %q", name, s.Expect)
			}
			steps = append(steps, Step{
				Subm: contest.JudgedSubm{
					ID:           uuid.NewString(),
					ContestID:    c.ID,
					CompetitorID: s.Competitor,
					ProblemID:    s.Problem,
					SubmitTime:   s.Time,
					Status:       verdict,
					Score:        s.Score,
				},
				Expect: expect,
			})
		}

		cases = append(cases, Case{
			Name:      name,
			Contest:   c,
			Steps:     steps,
			Standings: sc.Standings,
		})
	}
	return cases, nil
}
