package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/boxstack/analysis"
	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/simulation"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many seeds of one configuration and summarize them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		runs, _ := cmd.Flags().GetInt("runs")
		parallel, _ := cmd.Flags().GetInt("parallel")
		if runs < 1 {
			return fmt.Errorf("--runs must be at least 1, got %d", runs)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		results, err := runBatch(ctx, cfg, runs, parallel)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("output")
		if all, _ := cmd.Flags().GetBool("all"); all {
			return writeOutput(cmd.OutOrStdout(), format, results)
		}

		return writeOutput(cmd.OutOrStdout(), format, analysis.Summarize(results))
	},
}

func init() {
	simFlags(batchCmd.Flags())
	batchCmd.Flags().Int("runs", 10, "number of runs, seeded seed, seed+1, ...")
	batchCmd.Flags().Int("parallel", runtime.NumCPU(), "runs at the same time")
	batchCmd.Flags().Bool("all", false, "print every result instead of a summary")
	batchCmd.Flags().StringP("output", "o", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(batchCmd)
}

// runBatch runs cfg with consecutive seeds. A run that halts with an error
// is kept in the results. Each recorded run gets its own trace file.
func runBatch(
	ctx context.Context,
	cfg config.Config,
	runs, parallel int,
) ([]simulation.Result, error) {
	if cfg.Recording.Enabled &&
		cfg.Recording.Backend == datarecording.BackendClickHouse {
		return nil, fmt.Errorf("batch recording only supports the %s backend",
			datarecording.BackendSQLite)
	}

	results := make([]simulation.Result, runs)

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i := 0; i < runs; i++ {
		runCfg := cfg
		runCfg.Seed = cfg.Seed + int64(i)
		runCfg.Monitor = config.Monitor{}

		if runCfg.Recording.Enabled && runCfg.Recording.Path != "" {
			runCfg.Recording.Path += "_" + strconv.FormatInt(runCfg.Seed, 10)
		}

		g.Go(func() error {
			s, err := simulation.MakeBuilder().WithConfig(runCfg).Build()
			if err != nil {
				return err
			}

			res, runErr := s.Run(ctx)
			if err := s.Terminate(); err != nil {
				return err
			}

			if runErr != nil && ctx.Err() != nil {
				return ctx.Err()
			}

			log.Debug().
				Int64("seed", runCfg.Seed).
				Stringer("reason", res.HaltReason).
				Int("ticks", res.Ticks).
				Msg("run finished")

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
