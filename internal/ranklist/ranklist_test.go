package ranklist_test

import (
	"testing"
	"time"

	"github.com/programme-lv/contester/api"
	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/ranklist"
	"github.com/programme-lv/contester/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustContest(t *testing.T, typ contest.Type) *contest.Contest {
	t.Helper()
	c, err := contest.New(contest.Config{
		ID:        1,
		StartTime: 1000,
		EndTime:   2000,
		Type:      typ,
		Problems:  []int64{1, 2},
		HolderID:  99,
	})
	require.NoError(t, err)
	return c
}

func player(c *contest.Contest, competitor int64, subs ...contest.JudgedSubm) *contest.Player {
	rule := scoring.For(c.Type)
	p := contest.NewPlayer(c.ID, competitor)
	for _, s := range subs {
		s.ContestID = c.ID
		s.CompetitorID = competitor
		p.Results[s.ProblemID] = rule.Apply(p.Result(s.ProblemID), s)
	}
	return p
}

func ac(problem, at int64) contest.JudgedSubm {
	return contest.JudgedSubm{ProblemID: problem, SubmitTime: at, Status: api.Accepted, Score: 100}
}

func wa(problem, at int64) contest.JudgedSubm {
	return contest.JudgedSubm{ProblemID: problem, SubmitTime: at, Status: api.WrongAnswer}
}

func pt(problem, at int64, score int) contest.JudgedSubm {
	return contest.JudgedSubm{ProblemID: problem, SubmitTime: at, Status: api.PartiallyCorrect, Score: score}
}

func TestUpdatePlayerReplacesEntry(t *testing.T) {
	c := mustContest(t, contest.TypeACM)
	rl := ranklist.New(c.ID)

	rl.UpdatePlayer(c, player(c, 5, wa(1, 1100)))
	rl.UpdatePlayer(c, player(c, 5, wa(1, 1100), ac(1, 1500)))

	require.Equal(t, 1, rl.Len())
	e, ok := rl.Entry(5)
	require.True(t, ok)
	assert.Equal(t, 1, e.Solved)
	assert.Equal(t, int64(500+scoring.PenaltyPerRejection), e.Penalty)
}

func TestDirtyTracksChangedEntries(t *testing.T) {
	c := mustContest(t, contest.TypeIOI)
	rl := ranklist.FromEntries(c.ID, []ranklist.Entry{{CompetitorID: 3}})
	assert.Empty(t, rl.Dirty())

	rl.UpdatePlayer(c, player(c, 8, pt(1, 1100, 20)))
	rl.UpdatePlayer(c, player(c, 4, pt(1, 1100, 10)))

	dirty := rl.Dirty()
	require.Len(t, dirty, 2)
	assert.Equal(t, int64(4), dirty[0].CompetitorID)
	assert.Equal(t, int64(8), dirty[1].CompetitorID)

	rl.ClearDirty()
	assert.Empty(t, rl.Dirty())
	assert.Equal(t, 3, rl.Len())
}

func TestEntriesAreCopies(t *testing.T) {
	c := mustContest(t, contest.TypeNOI)
	rl := ranklist.New(c.ID)
	rl.UpdatePlayer(c, player(c, 5, pt(1, 1100, 40)))

	e, _ := rl.Entry(5)
	e.Results[1] = contest.ProblemResult{Score: 1000}

	again, _ := rl.Entry(5)
	assert.Equal(t, 40, again.Results[1].Score)
}

func TestUpdatePlayerPanicsOnForeignContest(t *testing.T) {
	c := mustContest(t, contest.TypeACM)

	assert.Panics(t, func() {
		ranklist.New(2).UpdatePlayer(c, contest.NewPlayer(c.ID, 5))
	})
	assert.Panics(t, func() {
		ranklist.New(c.ID).UpdatePlayer(c, contest.NewPlayer(2, 5))
	})
}

func TestRankedACM(t *testing.T) {
	c := mustContest(t, contest.TypeACM)
	rl := ranklist.New(c.ID)

	rl.UpdatePlayer(c, player(c, 10, ac(1, 1100)))
	rl.UpdatePlayer(c, player(c, 11, ac(1, 1100), ac(2, 1200)))
	rl.UpdatePlayer(c, player(c, 12, wa(1, 1050), ac(1, 1100)))
	rl.UpdatePlayer(c, player(c, 9, ac(1, 1100)))
	rl.UpdatePlayer(c, player(c, 13))

	rows := rl.Ranked(scoring.For(c.Type))
	require.Len(t, rows, 5)

	ids := make([]int64, len(rows))
	ranks := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.CompetitorID
		ranks[i] = r.Rank
	}
	assert.Equal(t, []int64{11, 9, 10, 12, 13}, ids)
	// 12 has a rejection but the same last accept, so it shares the place
	assert.Equal(t, []int{1, 2, 2, 2, 5}, ranks)
}

func TestRankedACMIgnoresPenalty(t *testing.T) {
	c := mustContest(t, contest.TypeACM)
	rl := ranklist.New(c.ID)

	rl.UpdatePlayer(c, player(c, 10, ac(1, 1900)))
	rl.UpdatePlayer(c, player(c, 20, wa(1, 1050), ac(1, 1100)))

	rows := rl.Ranked(scoring.For(c.Type))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(20), rows[0].CompetitorID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, int64(100+scoring.PenaltyPerRejection), rows[0].Penalty)
	assert.Equal(t, int64(10), rows[1].CompetitorID)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, int64(900), rows[1].Penalty)
}

func TestRankedIOI(t *testing.T) {
	c := mustContest(t, contest.TypeIOI)
	rl := ranklist.New(c.ID)

	rl.UpdatePlayer(c, player(c, 1, pt(1, 1100, 30), pt(2, 1100, 30)))
	rl.UpdatePlayer(c, player(c, 2, pt(1, 1100, 70)))
	rl.UpdatePlayer(c, player(c, 3, pt(1, 1100, 60)))

	rows := rl.Ranked(scoring.For(c.Type))
	assert.Equal(t, int64(2), rows[0].CompetitorID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, 2, rows[2].Rank)
	assert.Equal(t, int64(1), rows[1].CompetitorID)
}

func TestFilter(t *testing.T) {
	competitor := &contest.User{ID: 5}
	running := int64(1500)

	t.Run("acm shows everyone without scores", func(t *testing.T) {
		c := mustContest(t, contest.TypeACM)
		rl := ranklist.New(c.ID)
		rl.UpdatePlayer(c, player(c, 5, ac(1, 1100), wa(2, 1200)))
		rl.UpdatePlayer(c, player(c, 6, ac(1, 1300)))

		rows := rl.Filter(c, competitor, running)
		require.Len(t, rows, 2)
		r := rows[0].Results
		assert.Equal(t, api.Accepted, r[1].Status)
		assert.Zero(t, r[1].Score)
		assert.Equal(t, api.Rejected, r[2].Status)
		assert.Equal(t, 1, rows[0].Solved)
	})

	t.Run("ioi shows own row in full", func(t *testing.T) {
		c := mustContest(t, contest.TypeIOI)
		rl := ranklist.New(c.ID)
		rl.UpdatePlayer(c, player(c, 5, pt(1, 1100, 40)))
		rl.UpdatePlayer(c, player(c, 6, pt(1, 1100, 90)))

		rows := rl.Filter(c, competitor, running)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(5), rows[0].CompetitorID)
		assert.Zero(t, rows[0].Rank, "place would reveal the other competitor")
		assert.Equal(t, 40, rows[0].Score)
		assert.Equal(t, api.PartiallyCorrect, rows[0].Results[1].Status)
	})

	t.Run("noi hides results", func(t *testing.T) {
		c := mustContest(t, contest.TypeNOI)
		rl := ranklist.New(c.ID)
		ce := contest.JudgedSubm{ProblemID: 2, SubmitTime: 1200, Status: api.CompilationError}
		rl.UpdatePlayer(c, player(c, 5, pt(1, 1100, 40), ce))
		rl.UpdatePlayer(c, player(c, 6, pt(1, 1100, 90)))

		rows := rl.Filter(c, competitor, running)
		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].Rank)
		assert.Zero(t, rows[0].Score)
		assert.Equal(t, api.Compiled, rows[0].Results[1].Status)
		assert.Zero(t, rows[0].Results[1].Score)
		assert.Equal(t, api.CompilationError, rows[0].Results[2].Status)

		full, _ := rl.Entry(5)
		assert.Equal(t, 40, full.Score, "stored result stays unmasked")
	})

	t.Run("anonymous viewer sees nothing in noi", func(t *testing.T) {
		c := mustContest(t, contest.TypeNOI)
		rl := ranklist.New(c.ID)
		rl.UpdatePlayer(c, player(c, 5, pt(1, 1100, 40)))
		assert.Empty(t, rl.Filter(c, nil, running))
	})

	t.Run("supervisor and ended contest see everything", func(t *testing.T) {
		c := mustContest(t, contest.TypeNOI)
		rl := ranklist.New(c.ID)
		rl.UpdatePlayer(c, player(c, 5, pt(1, 1100, 40)))
		rl.UpdatePlayer(c, player(c, 6, pt(1, 1100, 50)))

		holder := rl.Filter(c, &contest.User{ID: 99}, running)
		require.Len(t, holder, 2)
		assert.Equal(t, 50, holder[0].Score)

		after := rl.Filter(c, competitor, 2000)
		require.Len(t, after, 2)
		assert.Equal(t, api.PartiallyCorrect, after[1].Results[1].Status)
	})
}

func TestSnapshot(t *testing.T) {
	c := mustContest(t, contest.TypeIOI)
	rl := ranklist.New(c.ID)
	rl.UpdatePlayer(c, player(c, 5, pt(2, 1100, 40), pt(1, 1200, 10)))

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := ranklist.Snapshot(c, rl.Ranked(scoring.For(c.Type)), at)

	assert.Equal(t, "ioi", snap.ContestType)
	assert.Equal(t, "2024-03-01T12:00:00Z", snap.TakenAt)
	require.Len(t, snap.Rows, 1)
	cells := snap.Rows[0].Problems
	require.Len(t, cells, 2)
	assert.Equal(t, int64(1), cells[0].ProblemID)
	require.NotNil(t, cells[1].Score)
	assert.Equal(t, 40, *cells[1].Score)
	assert.Equal(t, 50, snap.Rows[0].Score)
}
