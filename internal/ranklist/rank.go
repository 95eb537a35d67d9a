package ranklist

import (
	"cmp"
	"slices"
	"time"

	"github.com/programme-lv/contester/api"
	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/scoring"
)

// Row is an entry with its place. Entries with equal summaries share a place.
type Row struct {
	Rank int
	Entry
}

// Ranked sorts all entries by the rule, breaking ties by competitor id.
func (rl *Ranklist) Ranked(rule scoring.Rule) []Row {
	entries := rl.Entries()
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case rule.Less(a.Summary, b.Summary):
			return -1
		case rule.Less(b.Summary, a.Summary):
			return 1
		}
		return cmp.Compare(a.CompetitorID, b.CompetitorID)
	})

	rows := make([]Row, len(entries))
	for i, e := range entries {
		rank := i + 1
		if i > 0 && !rule.Less(entries[i-1].Summary, e.Summary) {
			rank = rows[i-1].Rank
		}
		rows[i] = Row{Rank: rank, Entry: e}
	}
	return rows
}

// Filter ranks the ranklist and strips what viewer may not see at time now.
// Supervisors and everyone after the contest has ended see the full ranklist.
// When others are hidden the remaining row carries Rank 0, since a place
// tells how the viewer compares to them.
func (rl *Ranklist) Filter(c *contest.Contest, viewer *contest.User, now int64) []Row {
	rows := rl.Ranked(scoring.For(c.Type))
	if c.IsSupervisor(viewer) || c.IsEnded(now) {
		return rows
	}

	if !c.AllowedSeeingOthers() {
		rows = slices.DeleteFunc(rows, func(r Row) bool {
			return viewer == nil || r.CompetitorID != viewer.ID
		})
		for i := range rows {
			rows[i].Rank = 0
		}
	}
	for i := range rows {
		rows[i].Entry = mask(c, rows[i].Entry)
	}
	return rows
}

func mask(c *contest.Contest, e Entry) Entry {
	if c.AllowedSeeingScore() {
		return e
	}
	if !c.AllowedSeeingResult() {
		e.Summary = scoring.Summary{}
	} else if c.Type != contest.TypeACM {
		e.Score = 0
	}
	for pid, r := range e.Results {
		switch {
		case !c.AllowedSeeingResult():
			status := api.Compiled
			if r.Status == api.CompilationError {
				status = api.CompilationError
			}
			r = contest.ProblemResult{
				Status:       status,
				SubmissionID: r.SubmissionID,
				SubmitTime:   r.SubmitTime,
				Submissions:  r.Submissions,
			}
		case r.Accepted:
			r.Score = 0
		default:
			r.Score = 0
			r.Status = api.Rejected
		}
		e.Results[pid] = r
	}
	return e
}

// Standing converts an entry into its wire form with one cell per contest
// problem the competitor has submitted to, in contest order. Numeric scores
// are left out when the contest type hides them.
func Standing(c *contest.Contest, e Entry) api.Standing {
	st := api.Standing{
		CompetitorID: e.CompetitorID,
		Score:        e.Score,
		Solved:       e.Solved,
		PenaltySecs:  e.Penalty,
		LastAccept:   e.LastAccept,
		Problems:     []api.ProblemCell{},
	}
	for _, pid := range c.Problems() {
		r, ok := e.Results[pid]
		if !ok {
			continue
		}
		cell := api.ProblemCell{
			ProblemID: pid,
			Verdict:   r.Status,
			Accepted:  r.Accepted,
			Rejected:  r.Rejected,
		}
		if c.AllowedSeeingScore() {
			score := r.Score
			cell.Score = &score
		}
		st.Problems = append(st.Problems, cell)
	}
	return st
}

// Snapshot exports rows as an api.RanklistSnapshot taken at t.
func Snapshot(c *contest.Contest, rows []Row, t time.Time) api.RanklistSnapshot {
	snap := api.RanklistSnapshot{
		ContestID:   c.ID,
		ContestType: c.Type.String(),
		Problems:    c.Problems(),
		TakenAt:     t.UTC().Format(time.RFC3339),
		Rows:        make([]api.RankedRow, 0, len(rows)),
	}
	for _, r := range rows {
		snap.Rows = append(snap.Rows, api.RankedRow{Rank: r.Rank, Standing: Standing(c, r.Entry)})
	}
	return snap
}
