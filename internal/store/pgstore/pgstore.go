package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/ranklist"
	"github.com/programme-lv/contester/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS contests (
	id              BIGINT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	subtitle        TEXT NOT NULL DEFAULT '',
	start_time      BIGINT NOT NULL,
	end_time        BIGINT NOT NULL,
	type            TEXT NOT NULL,
	problems        BIGINT[] NOT NULL DEFAULT '{}',
	admins          BIGINT[] NOT NULL DEFAULT '{}',
	holder_id       BIGINT NOT NULL DEFAULT 0,
	is_public       BOOLEAN NOT NULL DEFAULT FALSE,
	hide_statistics BOOLEAN NOT NULL DEFAULT FALSE,
	CHECK (start_time <= end_time)
);

CREATE TABLE IF NOT EXISTS contest_players (
	contest_id    BIGINT NOT NULL REFERENCES contests(id),
	competitor_id BIGINT NOT NULL,
	results       JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (contest_id, competitor_id)
);

CREATE TABLE IF NOT EXISTS ranklist_entries (
	contest_id    BIGINT NOT NULL REFERENCES contests(id),
	competitor_id BIGINT NOT NULL,
	score         INTEGER NOT NULL,
	solved        INTEGER NOT NULL,
	penalty       BIGINT NOT NULL,
	last_accept   BIGINT NOT NULL,
	results       JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (contest_id, competitor_id)
);`

type PgStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ store.Store = (*PgStore)(nil)

// Connect opens a pool and retries the first ping until ctx is done,
// since the database container usually starts alongside us.
func Connect(ctx context.Context, url string, maxConns int32, logger *slog.Logger) (*PgStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	for {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &PgStore{pool: pool, logger: logger}, nil
			}
			pool.Close()
		}
		logger.Warn("postgres not ready", "err", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to postgres: %w", errors.Join(err, ctx.Err()))
		case <-time.After(time.Second):
		}
	}
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *PgStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgStore{pool: pool, logger: logger}
}

func (s *PgStore) Close() {
	s.pool.Close()
}

// Migrate creates missing tables.
func (s *PgStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PgStore) LoadContest(ctx context.Context, contestID int64) (*contest.Contest, error) {
	var (
		cfg contest.Config
		typ string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, subtitle, start_time, end_time, type,
		       problems, admins, holder_id, is_public, hide_statistics
		FROM contests WHERE id = $1`, contestID).Scan(
		&cfg.ID, &cfg.Title, &cfg.Subtitle, &cfg.StartTime, &cfg.EndTime, &typ,
		&cfg.Problems, &cfg.Admins, &cfg.HolderID, &cfg.IsPublic, &cfg.HideStatistics,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("contest %d: %w", contestID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contest %d: %w", contestID, err)
	}

	cfg.Type, err = contest.ParseType(typ)
	if err != nil {
		return nil, fmt.Errorf("contest %d: %w", contestID, err)
	}
	return contest.New(cfg)
}

func (s *PgStore) SaveContest(ctx context.Context, c *contest.Contest) error {
	if err := c.Validate(); err != nil {
		return err
	}
	admins := c.Admins()
	if admins == nil {
		admins = []int64{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contests (id, title, subtitle, start_time, end_time, type,
		                      problems, admins, holder_id, is_public, hide_statistics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			subtitle = EXCLUDED.subtitle,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			type = EXCLUDED.type,
			problems = EXCLUDED.problems,
			admins = EXCLUDED.admins,
			holder_id = EXCLUDED.holder_id,
			is_public = EXCLUDED.is_public,
			hide_statistics = EXCLUDED.hide_statistics`,
		c.ID, c.Title, c.Subtitle, c.StartTime, c.EndTime, c.Type.String(),
		c.Problems(), admins, c.HolderID, c.IsPublic, c.HideStatistics,
	)
	if err != nil {
		return fmt.Errorf("failed to save contest %d: %w", c.ID, err)
	}
	return nil
}

func (s *PgStore) LoadPlayer(ctx context.Context, contestID, competitorID int64) (*contest.Player, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT results FROM contest_players
		WHERE contest_id = $1 AND competitor_id = $2`, contestID, competitorID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player %d in contest %d: %w", competitorID, contestID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player %d in contest %d: %w", competitorID, contestID, err)
	}

	p := contest.NewPlayer(contestID, competitorID)
	if err := json.Unmarshal(raw, &p.Results); err != nil {
		return nil, fmt.Errorf("failed to decode results of player %d: %w", competitorID, err)
	}
	return p, nil
}

const upsertPlayer = `
	INSERT INTO contest_players (contest_id, competitor_id, results)
	VALUES ($1, $2, $3)
	ON CONFLICT (contest_id, competitor_id) DO UPDATE SET results = EXCLUDED.results`

const upsertEntry = `
	INSERT INTO ranklist_entries
		(contest_id, competitor_id, score, solved, penalty, last_accept, results)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (contest_id, competitor_id) DO UPDATE SET
		score = EXCLUDED.score,
		solved = EXCLUDED.solved,
		penalty = EXCLUDED.penalty,
		last_accept = EXCLUDED.last_accept,
		results = EXCLUDED.results`

func queuePlayer(batch *pgx.Batch, p *contest.Player) error {
	raw, err := json.Marshal(p.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results of player %d: %w", p.CompetitorID, err)
	}
	batch.Queue(upsertPlayer, p.ContestID, p.CompetitorID, raw)
	return nil
}

func queueEntries(batch *pgx.Batch, contestID int64, dirty []ranklist.Entry) error {
	for _, e := range dirty {
		raw, err := json.Marshal(e.Results)
		if err != nil {
			return fmt.Errorf("failed to encode ranklist entry %d: %w", e.CompetitorID, err)
		}
		batch.Queue(upsertEntry,
			contestID, e.CompetitorID, e.Score, e.Solved, e.Penalty, e.LastAccept, raw)
	}
	return nil
}

func (s *PgStore) sendTx(ctx context.Context, batch *pgx.Batch) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *PgStore) SavePlayer(ctx context.Context, p *contest.Player) error {
	raw, err := json.Marshal(p.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results of player %d: %w", p.CompetitorID, err)
	}
	_, err = s.pool.Exec(ctx, upsertPlayer, p.ContestID, p.CompetitorID, raw)
	if err != nil {
		return fmt.Errorf("failed to save player %d in contest %d: %w", p.CompetitorID, p.ContestID, err)
	}
	return nil
}

// LoadRanklist reports ErrNotFound for a contest without entries; the
// caller creates the ranklist lazily either way.
func (s *PgStore) LoadRanklist(ctx context.Context, contestID int64) (*ranklist.Ranklist, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT competitor_id, score, solved, penalty, last_accept, results
		FROM ranklist_entries WHERE contest_id = $1`, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranklist of contest %d: %w", contestID, err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ranklist.Entry, error) {
		var (
			e   ranklist.Entry
			raw []byte
		)
		err := row.Scan(&e.CompetitorID, &e.Score, &e.Solved, &e.Penalty, &e.LastAccept, &raw)
		if err != nil {
			return e, err
		}
		return e, json.Unmarshal(raw, &e.Results)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read ranklist of contest %d: %w", contestID, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("ranklist of contest %d: %w", contestID, store.ErrNotFound)
	}
	return ranklist.FromEntries(contestID, entries), nil
}

// SaveRanklist upserts dirty entries in one transaction. Entries of other
// competitors are never written, so concurrent admissions don't clobber
// each other.
func (s *PgStore) SaveRanklist(ctx context.Context, rl *ranklist.Ranklist) error {
	dirty := rl.Dirty()
	if len(dirty) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	if err := queueEntries(batch, rl.ContestID, dirty); err != nil {
		return err
	}
	if err := s.sendTx(ctx, batch); err != nil {
		return fmt.Errorf("failed to save ranklist of contest %d: %w", rl.ContestID, err)
	}
	rl.ClearDirty()
	s.logger.Debug("saved ranklist entries", "contest_id", rl.ContestID, "count", len(dirty))
	return nil
}

// SaveAdmission writes the player row and the dirty entries in a single
// transaction.
func (s *PgStore) SaveAdmission(ctx context.Context, p *contest.Player, rl *ranklist.Ranklist) error {
	dirty := rl.Dirty()
	batch := &pgx.Batch{}
	if err := queuePlayer(batch, p); err != nil {
		return err
	}
	if err := queueEntries(batch, rl.ContestID, dirty); err != nil {
		return err
	}
	if err := s.sendTx(ctx, batch); err != nil {
		return fmt.Errorf("failed to save admission of player %d in contest %d: %w",
			p.CompetitorID, p.ContestID, err)
	}
	rl.ClearDirty()
	return nil
}
