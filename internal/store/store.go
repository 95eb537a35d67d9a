package store

import (
	"context"
	"errors"

	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/ranklist"
)

var ErrNotFound = errors.New("not found")

// Store persists contests, players and ranklists keyed by integer ids.
// Loads must observe saves made earlier by the same caller.
type Store interface {
	LoadContest(ctx context.Context, contestID int64) (*contest.Contest, error)
	SaveContest(ctx context.Context, c *contest.Contest) error

	LoadPlayer(ctx context.Context, contestID, competitorID int64) (*contest.Player, error)
	SavePlayer(ctx context.Context, p *contest.Player) error

	LoadRanklist(ctx context.Context, contestID int64) (*ranklist.Ranklist, error)
	// SaveRanklist persists the ranklist's dirty entries and clears them.
	SaveRanklist(ctx context.Context, rl *ranklist.Ranklist) error

	// SaveAdmission persists p together with rl's dirty entries. Either both
	// are written or neither is; dirty entries are cleared only on success.
	SaveAdmission(ctx context.Context, p *contest.Player, rl *ranklist.Ranklist) error
}
