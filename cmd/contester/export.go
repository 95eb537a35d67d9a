package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/programme-lv/contester/internal/contest"
	"github.com/programme-lv/contester/internal/environment"
	"github.com/programme-lv/contester/internal/ranklist"
	"github.com/programme-lv/contester/internal/scoring"
	"github.com/programme-lv/contester/internal/snapshot"
	"github.com/programme-lv/contester/internal/store"
	"github.com/programme-lv/contester/internal/xdg"
	"github.com/urfave/cli/v3"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write a ranklist snapshot (.json or .json.zst)",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "contest",
				Usage:    "contest id",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "output file (default: $XDG_DATA_HOME/contester/contest-<id>.json.zst)",
			},
			&cli.Int64Flag{
				Name:  "as",
				Usage: "export what this competitor may currently see instead of the full ranklist",
			},
		},
		Action: export,
	}
}

func export(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return usageErr("export reads from postgres, set postgres.url")
	}
	st, closeStore, err := openStore(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	contestID := cmd.Int64("contest")
	c, err := st.LoadContest(ctx, contestID)
	if err != nil {
		return err
	}
	rl, err := st.LoadRanklist(ctx, contestID)
	if errors.Is(err, store.ErrNotFound) {
		rl = ranklist.New(contestID)
	} else if err != nil {
		return err
	}

	now := time.Now()
	var rows []ranklist.Row
	if viewer := cmd.Int64("as"); viewer != 0 {
		rows = rl.Filter(c, &contest.User{ID: viewer}, now.Unix())
	} else {
		rows = rl.Ranked(scoring.For(c.Type))
	}

	out := cmd.String("out")
	if out == "" {
		dir := xdg.New().AppDataDir(environment.AppName)
		if err := xdg.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		out = filepath.Join(dir, fmt.Sprintf("contest-%d.json.zst", contestID))
	}
	if err := snapshot.WriteFile(out, ranklist.Snapshot(c, rows, now)); err != nil {
		return err
	}
	logger.Info("exported ranklist", "contest_id", contestID, "rows", len(rows), "path", out)
	return nil
}
