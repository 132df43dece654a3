package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockdrop/internal/config"
	"github.com/matzehuels/blockdrop/pkg/history"
)

// historyOpts holds the command-line flags for the history command.
type historyOpts struct {
	limit  int
	asJSON bool
}

// historyCommand creates the history command, which lists recorded runs.
func (c *CLI) historyCommand() *cobra.Command {
	opts := historyOpts{limit: history.DefaultLimit}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent batch runs",
		Long: `List recent batch runs recorded by the configured history backend.

History is recorded when [history] backend is "file" or "mongo" in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.History.Backend == "" || cfg.History.Backend == history.BackendNone {
				printInfo("History is disabled; set [history] backend in %s", cfgName(c.configPath))
				return nil
			}

			ctx := cmd.Context()
			store := c.openHistory(ctx, cfg)
			defer store.Close(ctx)

			runs, err := store.Recent(ctx, opts.limit)
			if err != nil {
				return err
			}

			if opts.asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			for _, run := range runs {
				printRun(run)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", opts.limit, "maximum number of runs to list")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print runs as JSON")

	return cmd
}

func cfgName(path string) string {
	if path == "" {
		return config.DefaultFile
	}
	return path
}

// printRun prints one history entry.
func printRun(run *history.Run) {
	fmt.Println(StyleTitle.Render(run.StartedAt.Local().Format("2006-01-02 15:04:05")) + " " + StyleDim.Render(run.ID))
	printKeyValue("input", run.Input)
	printKeyValue("output", run.Output)
	printKeyValue("heights", summarizeHeights(run.Heights, 10))
	fmt.Println(formatBatchStats(run.Stats))
	fmt.Println()
}

// summarizeHeights joins up to n heights, noting how many were left out.
func summarizeHeights(heights []int, n int) string {
	shown := heights[:min(len(heights), n)]
	parts := make([]string, len(shown))
	for i, h := range shown {
		parts[i] = strconv.Itoa(h)
	}
	s := strings.Join(parts, " ")
	if rest := len(heights) - len(shown); rest > 0 {
		s += fmt.Sprintf(" … (+%d)", rest)
	}
	return s
}
