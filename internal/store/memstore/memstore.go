package memstore

import (
	"context"
	"fmt"

	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/ranklist"
	"github.com/programme-lv/contester/internal/store"
	"github.com/puzpuzpuz/xsync/v3"
)

type playerKey struct {
	contestID    int64
	competitorID int64
}

// MemStore keeps everything in process memory. Values are copied on the way
// in and out, so callers get the same load-modify-save semantics as with a
// database.
type MemStore struct {
	contests *xsync.MapOf[int64, contest.Config]
	players  *xsync.MapOf[playerKey, *contest.Player]
	// contest id -> competitor id -> entry
	entries *xsync.MapOf[int64, *xsync.MapOf[int64, ranklist.Entry]]
}

var _ store.Store = (*MemStore)(nil)

func New() *MemStore {
	return &MemStore{
		contests: xsync.NewMapOf[int64, contest.Config](),
		players:  xsync.NewMapOf[playerKey, *contest.Player](),
		entries:  xsync.NewMapOf[int64, *xsync.MapOf[int64, ranklist.Entry]](),
	}
}

func (m *MemStore) LoadContest(_ context.Context, contestID int64) (*contest.Contest, error) {
	cfg, ok := m.contests.Load(contestID)
	if !ok {
		return nil, fmt.Errorf("contest %d: %w", contestID, store.ErrNotFound)
	}
	return contest.New(cfg)
}

func (m *MemStore) SaveContest(_ context.Context, c *contest.Contest) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.contests.Store(c.ID, contest.Config{
		ID:             c.ID,
		Title:          c.Title,
		Subtitle:       c.Subtitle,
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		Type:           c.Type,
		Problems:       c.Problems(),
		Admins:         c.Admins(),
		HolderID:       c.HolderID,
		IsPublic:       c.IsPublic,
		HideStatistics: c.HideStatistics,
	})
	return nil
}

func (m *MemStore) LoadPlayer(_ context.Context, contestID, competitorID int64) (*contest.Player, error) {
	p, ok := m.players.Load(playerKey{contestID, competitorID})
	if !ok {
		return nil, fmt.Errorf("player %d in contest %d: %w", competitorID, contestID, store.ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *MemStore) SavePlayer(_ context.Context, p *contest.Player) error {
	m.players.Store(playerKey{p.ContestID, p.CompetitorID}, p.Clone())
	return nil
}

func (m *MemStore) LoadRanklist(_ context.Context, contestID int64) (*ranklist.Ranklist, error) {
	byCompetitor, ok := m.entries.Load(contestID)
	if !ok {
		return nil, fmt.Errorf("ranklist of contest %d: %w", contestID, store.ErrNotFound)
	}
	entries := make([]ranklist.Entry, 0, byCompetitor.Size())
	byCompetitor.Range(func(_ int64, e ranklist.Entry) bool {
		entries = append(entries, e)
		return true
	})
	return ranklist.FromEntries(contestID, entries), nil
}

func (m *MemStore) SaveRanklist(_ context.Context, rl *ranklist.Ranklist) error {
	byCompetitor, _ := m.entries.LoadOrCompute(rl.ContestID, func() *xsync.MapOf[int64, ranklist.Entry] {
		return xsync.NewMapOf[int64, ranklist.Entry]()
	})
	// Dirty returns copies already.
	for _, e := range rl.Dirty() {
		byCompetitor.Store(e.CompetitorID, e)
	}
	rl.ClearDirty()
	return nil
}

// SaveAdmission can't fail halfway, so it is the two saves in sequence.
func (m *MemStore) SaveAdmission(ctx context.Context, p *contest.Player, rl *ranklist.Ranklist) error {
	if err := m.SavePlayer(ctx, p); err != nil {
		return err
	}
	return m.SaveRanklist(ctx, rl)
}
