package scoring_test

import (
	"testing"

	"github.com/programme-lv/contester/api"
	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustContest(t *testing.T, typ contest.Type) *contest.Contest {
	t.Helper()
	c, err := contest.New(contest.Config{
		ID:        1,
		StartTime: 1000,
		EndTime:   5000,
		Type:      typ,
		Problems:  []int64{1, 2},
	})
	require.NoError(t, err)
	return c
}

func apply(rule scoring.Rule, p *contest.Player, subs ...contest.JudgedSubm) {
	for _, s := range subs {
		p.Results[s.ProblemID] = rule.Apply(p.Result(s.ProblemID), s)
	}
}

func subm(problem int64, at int64, v api.Verdict, score int) contest.JudgedSubm {
	return contest.JudgedSubm{ContestID: 1, CompetitorID: 5, ProblemID: problem, SubmitTime: at, Status: v, Score: score}
}

func TestIOIKeepsBest(t *testing.T) {
	c := mustContest(t, contest.TypeIOI)
	rule := scoring.For(c.Type)
	p := contest.NewPlayer(1, 5)

	apply(rule, p,
		subm(1, 1100, api.PartiallyCorrect, 40),
		subm(1, 1200, api.PartiallyCorrect, 70),
		subm(1, 1300, api.WrongAnswer, 30),
	)

	r := p.Result(1)
	require.NotNil(t, r)
	assert.Equal(t, 70, r.Score)
	assert.Equal(t, int64(1200), r.SubmitTime)
	assert.Equal(t, 3, r.Submissions)
	assert.Equal(t, 70, rule.Summarize(c, p).Score)
}

func TestIOIEqualScoreKeepsEarlier(t *testing.T) {
	rule := scoring.For(contest.TypeIOI)
	p := contest.NewPlayer(1, 5)

	first := subm(1, 1100, api.PartiallyCorrect, 50)
	first.ID = "a"
	second := subm(1, 1200, api.PartiallyCorrect, 50)
	second.ID = "b"
	apply(rule, p, first, second)

	assert.Equal(t, "a", p.Result(1).SubmissionID)
}

func TestNOIKeepsLast(t *testing.T) {
	c := mustContest(t, contest.TypeNOI)
	rule := scoring.For(c.Type)
	p := contest.NewPlayer(1, 5)

	apply(rule, p,
		subm(1, 1100, api.PartiallyCorrect, 40),
		subm(1, 1200, api.PartiallyCorrect, 70),
		subm(1, 1300, api.WrongAnswer, 30),
		subm(2, 1400, api.Accepted, 100),
	)

	assert.Equal(t, 30, p.Result(1).Score)
	assert.Equal(t, 130, rule.Summarize(c, p).Score)
}

func TestACMFirstAcceptStands(t *testing.T) {
	c := mustContest(t, contest.TypeACM)
	rule := scoring.For(c.Type)
	p := contest.NewPlayer(1, 5)

	apply(rule, p,
		subm(1, 1100, api.WrongAnswer, 0),
		subm(1, 1200, api.TimeLimitExceeded, 0),
		subm(1, 1500, api.Accepted, 100),
		subm(1, 1700, api.Accepted, 100),
		subm(1, 1800, api.WrongAnswer, 0),
	)

	r := p.Result(1)
	require.NotNil(t, r)
	assert.True(t, r.Accepted)
	assert.Equal(t, int64(1500), r.AcceptTime)
	assert.Equal(t, 2, r.Rejected)
	assert.Equal(t, 5, r.Submissions)

	sum := rule.Summarize(c, p)
	assert.Equal(t, 1, sum.Solved)
	assert.Equal(t, int64(500+2*scoring.PenaltyPerRejection), sum.Penalty)
	assert.Equal(t, int64(1500), sum.LastAccept)
}

func TestACMUnsolvedCarriesNoPenalty(t *testing.T) {
	c := mustContest(t, contest.TypeACM)
	rule := scoring.For(c.Type)
	p := contest.NewPlayer(1, 5)

	apply(rule, p, subm(2, 1100, api.WrongAnswer, 0), subm(2, 1200, api.RuntimeError, 0))

	assert.Equal(t, 2, p.Result(2).Rejected)
	assert.Equal(t, scoring.Summary{}, rule.Summarize(c, p))
}

func TestSummarizeIgnoresRemovedProblems(t *testing.T) {
	c := mustContest(t, contest.TypeNOI)
	rule := scoring.For(c.Type)
	p := contest.NewPlayer(1, 5)
	apply(rule, p, subm(1, 1100, api.Accepted, 100), subm(2, 1100, api.Accepted, 100))

	c.SetProblemsNoCheck([]int64{2})
	assert.Equal(t, 100, rule.Summarize(c, p).Score)
}

func TestACMOrdering(t *testing.T) {
	rule := scoring.For(contest.TypeACM)

	more := scoring.Summary{Solved: 2, Penalty: 9000}
	fewer := scoring.Summary{Solved: 1, Penalty: 10}
	assert.True(t, rule.Less(more, fewer))
	assert.False(t, rule.Less(fewer, more))

	// an earlier last accept wins even with a larger penalty
	early := scoring.Summary{Solved: 1, Penalty: 1300, LastAccept: 1100}
	late := scoring.Summary{Solved: 1, Penalty: 900, LastAccept: 1900}
	assert.True(t, rule.Less(early, late))
	assert.False(t, rule.Less(late, early))
	assert.False(t, rule.Less(early, early))

	samePenaltyA := scoring.Summary{Solved: 1, Penalty: 100, LastAccept: 1100}
	samePenaltyB := scoring.Summary{Solved: 1, Penalty: 200, LastAccept: 1100}
	assert.False(t, rule.Less(samePenaltyA, samePenaltyB))
	assert.False(t, rule.Less(samePenaltyB, samePenaltyA))
}

func TestForPanicsOnUnknownType(t *testing.T) {
	assert.Panics(t, func() { scoring.For(contest.Type(9)) })
}
