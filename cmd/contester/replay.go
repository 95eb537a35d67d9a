package main

import (
	"context"
	"fmt"
	"os"

	"github.com/programme-lv/contester/internal/behave"
	"github.com/programme-lv/contester/internal/termview"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func replayCmd() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "replay scenario files against an in-memory store and check expected standings",
		ArgsUsage: "<scenarios.toml>...",
		Action:    replay,
	}
}

func replay(ctx context.Context, cmd *cli.Command) error {
	_, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Args().Len() == 0 {
		return usageErr("replay needs at least one scenario file")
	}

	var cases []behave.Case
	for _, path := range cmd.Args().Slice() {
		parsed, err := behave.Parse(path)
		if err != nil {
			return err
		}
		cases = append(cases, parsed...)
	}

	// cases are independent, each gets its own store
	results := make([]behave.Result, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range cases {
		g.Go(func() error {
			res, err := behave.Run(gctx, tc, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", tc.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := termview.New(os.Stdout)
	failed := 0
	for i, tc := range cases {
		out.Ranklist(tc.Contest, results[i].Rows)
		out.Failures(tc.Name, results[i].Failures)
		if !results[i].Passed() {
			failed++
		}
	}
	out.Done()

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(cases))
	}
	return nil
}
