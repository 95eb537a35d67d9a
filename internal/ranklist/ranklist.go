package ranklist

import (
	"fmt"
	"maps"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/scoring"
)

// Entry is one competitor's standing as last computed by UpdatePlayer.
type Entry struct {
	CompetitorID int64
	scoring.Summary
	Results map[int64]contest.ProblemResult
}

func (e Entry) clone() Entry {
	e.Results = maps.Clone(e.Results)
	return e
}

// Ranklist is the live leaderboard of one contest. Entries are keyed by
// competitor; order is derived on query, never maintained on write.
//
// A Ranklist value is not safe for concurrent use. The admission path loads
// its own copy under the competitor's gate and persists only Dirty entries.
type Ranklist struct {
	ContestID int64

	entries map[int64]Entry
	dirty   mapset.Set[int64]
}

func New(contestID int64) *Ranklist {
	return &Ranklist{
		ContestID: contestID,
		entries:   make(map[int64]Entry),
		dirty:     mapset.NewThreadUnsafeSet[int64](),
	}
}

// FromEntries rebuilds a ranklist from persisted entries. Nothing is dirty.
func FromEntries(contestID int64, entries []Entry) *Ranklist {
	rl := New(contestID)
	for _, e := range entries {
		rl.entries[e.CompetitorID] = e.clone()
	}
	return rl
}

// UpdatePlayer replaces or inserts the entry of p's competitor with a freshly
// computed standing. It panics when the ranklist, contest and player don't
// belong together; that is a wiring bug, not a runtime condition.
func (rl *Ranklist) UpdatePlayer(c *contest.Contest, p *contest.Player) {
	if rl.ContestID != c.ID {
		panic(fmt.Sprintf("ranklist: ranklist of contest %d updated for contest %d", rl.ContestID, c.ID))
	}
	if p.ContestID != c.ID {
		panic(fmt.Sprintf("ranklist: player of contest %d added to contest %d", p.ContestID, c.ID))
	}

	rule := scoring.For(c.Type)
	rl.entries[p.CompetitorID] = Entry{
		CompetitorID: p.CompetitorID,
		Summary:      rule.Summarize(c, p),
		Results:      maps.Clone(p.Results),
	}
	rl.dirty.Add(p.CompetitorID)
}

func (rl *Ranklist) Entry(competitorID int64) (Entry, bool) {
	e, ok := rl.entries[competitorID]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

func (rl *Ranklist) Len() int {
	return len(rl.entries)
}

// Entries returns copies of all entries ordered by competitor id.
func (rl *Ranklist) Entries() []Entry {
	return rl.collect(slices.Collect(maps.Keys(rl.entries)))
}

// Dirty returns the entries changed since load or the last ClearDirty.
func (rl *Ranklist) Dirty() []Entry {
	return rl.collect(rl.dirty.ToSlice())
}

func (rl *Ranklist) ClearDirty() {
	rl.dirty.Clear()
}

func (rl *Ranklist) collect(ids []int64) []Entry {
	slices.Sort(ids)
	res := make([]Entry, 0, len(ids))
	for _, id := range ids {
		res = append(res, rl.entries[id].clone())
	}
	return res
}
