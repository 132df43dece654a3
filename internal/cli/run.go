package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockdrop/internal/config"
	"github.com/matzehuels/blockdrop/pkg/batch"
	"github.com/matzehuels/blockdrop/pkg/history"
)

// runOpts holds the command-line flags for a batch run. Flags override the
// config file only when set explicitly.
type runOpts struct {
	workers   int
	onInvalid string
	cache     string
	noHistory bool
}

// apply copies explicitly set flags and positional paths onto cfg.
func (o *runOpts) apply(cmd *cobra.Command, args []string, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("on-invalid") {
		cfg.OnInvalid = o.onInvalid
	}
	if flags.Changed("cache") {
		cfg.Cache.Backend = o.cache
	}
	if o.noHistory {
		cfg.History.Backend = history.BackendNone
	}
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if len(args) > 1 {
		cfg.Output = args[1]
	}
}

// runCommand creates the batch command used as the root command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   appName + " [input] [output]",
		Short: "Blockdrop simulates tetromino drops and reports stack heights",
		Long: `Blockdrop drops tetrominoes onto a 10-column board, clears full rows after
every drop, and writes the final stack height of each input line.

Each input line is a comma-separated list of drops such as "Q0,I2,T4": a piece
letter (Q I T L J Z S) followed by the leftmost column it occupies. Blank lines
produce a height of 0.

Examples:
  blockdrop                               # Challenge_Input.txt -> Output.txt
  blockdrop scenarios.txt heights.txt     # explicit paths
  blockdrop --workers 8 --cache file big.txt out.txt`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, args, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runBatch(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", batch.DefaultWorkers, "number of scenarios simulated concurrently")
	cmd.Flags().StringVar(&opts.onInvalid, "on-invalid", "fail", "malformed token handling: fail or skip")
	cmd.Flags().StringVar(&opts.cache, "cache", "none", "result cache backend: none, file or redis")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record this run in the history")

	return cmd
}

// runBatch simulates cfg.Input into cfg.Output and records the run.
func (c *CLI) runBatch(ctx context.Context, cfg config.Config) error {
	runner, closeCache := c.newRunner(ctx, cfg)
	defer closeCache()

	started := time.Now()
	prog := newProgress(c.Logger)
	c.Logger.Debug("starting batch", "input", cfg.Input, "output", cfg.Output, "workers", runner.Workers, "policy", runner.Policy)

	stopHooks := c.registerHooks(ctx, true)
	res, err := runner.RunFile(ctx, cfg.Input, cfg.Output)
	stopHooks(err)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Simulated %d scenarios", res.Stats.Lines), "drops", res.Stats.Drops, "cleared", res.Stats.RowsCleared)

	fmt.Printf("Done. Heights written to '%s'.\n", cfg.Output)
	printBatchStats(res.Stats)
	for _, le := range res.Skipped {
		printWarning("line %d: skipped %v", le.Line, le.Err)
	}

	c.recordRun(ctx, cfg, runner, started, res)
	return nil
}

// recordRun saves the run to the configured history. Failures are warnings.
func (c *CLI) recordRun(ctx context.Context, cfg config.Config, runner *batch.Runner, started time.Time, res *batch.Result) {
	logger := loggerFromContext(ctx)
	store := c.openHistory(ctx, cfg)
	defer store.Close(context.Background())

	run := history.NewRun(started, cfg.Input, cfg.Output, runner, res)
	if hash, err := history.HashFile(cfg.Input); err == nil {
		run.InputHash = hash
	}
	if err := store.Save(ctx, run); err != nil {
		logger.Warnf("Run not recorded: %v", err)
		return
	}
	logger.Debug("recorded run", "id", run.ID)
}
