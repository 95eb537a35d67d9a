package scoring

import (
	"github.com/programme-lv/contester/internal/contest"
)

// bestWins keeps the highest scoring submission per problem (ioi).
type bestWins struct{}

func (bestWins) Apply(prev *contest.ProblemResult, s contest.JudgedSubm) contest.ProblemResult {
	if prev != nil && s.Score <= prev.Score {
		res := *prev
		res.Submissions++
		return res
	}
	res := fromSubm(s)
	res.Submissions = submissions(prev)
	return res
}

func (bestWins) Summarize(c *contest.Contest, p *contest.Player) Summary {
	return sumScores(c, p)
}

func (bestWins) Less(a, b Summary) bool {
	return a.Score > b.Score
}

// lastWins keeps the latest judged submission per problem (noi).
type lastWins struct{}

func (lastWins) Apply(prev *contest.ProblemResult, s contest.JudgedSubm) contest.ProblemResult {
	res := fromSubm(s)
	res.Submissions = submissions(prev)
	return res
}

func (lastWins) Summarize(c *contest.Contest, p *contest.Player) Summary {
	return sumScores(c, p)
}

func (lastWins) Less(a, b Summary) bool {
	return a.Score > b.Score
}
