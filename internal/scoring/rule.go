package scoring

import (
	"fmt"

	"github.com/programme-lv/contester/internal/contest"
)

// Summary is the aggregate a ranklist entry is ordered by.
type Summary struct {
	Score      int
	Solved     int
	Penalty    int64
	LastAccept int64
}

// Rule is one contest type's scoring regime.
type Rule interface {
	// Apply folds a judged submission into the previous result for that
	// problem; prev is nil for the first submission.
	Apply(prev *contest.ProblemResult, s contest.JudgedSubm) contest.ProblemResult

	Summarize(c *contest.Contest, p *contest.Player) Summary

	// Less reports whether a ranks strictly above b.
	Less(a, b Summary) bool
}

var rules = [...]Rule{
	contest.TypeNOI: lastWins{},
	contest.TypeIOI: bestWins{},
	contest.TypeACM: acm{},
}

// For returns the rule of a contest type. It panics on types ParseType
// would never produce.
func For(t contest.Type) Rule {
	if int(t) < 0 || int(t) >= len(rules) {
		panic(fmt.Sprintf("scoring: no rule for contest type %v", t))
	}
	return rules[t]
}

func fromSubm(s contest.JudgedSubm) contest.ProblemResult {
	return contest.ProblemResult{
		Score:        s.Score,
		Status:       s.Status,
		SubmissionID: s.ID,
		SubmitTime:   s.SubmitTime,
		Accepted:     s.Status.IsAccepted(),
	}
}

func submissions(prev *contest.ProblemResult) int {
	if prev == nil {
		return 1
	}
	return prev.Submissions + 1
}

// sumScores adds up per-problem scores of problems still in the contest.
func sumScores(c *contest.Contest, p *contest.Player) Summary {
	var sum Summary
	for problemID, r := range p.Results {
		if !c.Contains(problemID) {
			continue
		}
		sum.Score += r.Score
		if r.Accepted {
			sum.Solved++
		}
	}
	return sum
}
