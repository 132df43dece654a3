package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockdrop/pkg/batch"
	"github.com/matzehuels/blockdrop/pkg/scenario"
)

// boardOpts holds the command-line flags for the board command.
type boardOpts struct {
	trace     bool   // print every drop
	plain     bool   // unstyled '#'/'.' rows
	onInvalid string // malformed token policy
}

// boardCommand creates the board command, which simulates one scenario and
// prints the resulting board.
func (c *CLI) boardCommand() *cobra.Command {
	opts := boardOpts{onInvalid: scenario.PolicyFail.String()}

	cmd := &cobra.Command{
		Use:   "board <scenario>",
		Short: "Simulate one scenario and print the final board",
		Long: `Simulate one scenario and print the final board and its height.

Examples:
  blockdrop board Q0,Q2,Q4
  blockdrop board --trace I0,I4,Q8
  blockdrop board --plain "T1, Z3, I4"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBoard(args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.trace, "trace", "t", false, "print the board height after every drop")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print rows as plain text")
	cmd.Flags().StringVar(&opts.onInvalid, "on-invalid", opts.onInvalid, "malformed token handling: fail or skip")

	return cmd
}

func (c *CLI) runBoard(line string, opts boardOpts) error {
	policy, err := scenario.ParsePolicy(opts.onInvalid)
	if err != nil {
		return err
	}
	sc, err := scenario.Parse(line, policy)
	if err != nil {
		return err
	}
	for _, te := range sc.Skipped {
		printWarning("skipped %v", te)
	}

	steps, b := batch.Trace(sc)

	if opts.trace {
		for i, st := range steps {
			fmt.Println(formatStep(i+1, st))
		}
		fmt.Println()
	}

	if opts.plain {
		if s := b.String(); s != "" {
			fmt.Println(s)
		}
	} else {
		fmt.Println(renderBoard(b, 4))
	}
	printKeyValue("height", StyleNumber.Render(strconv.Itoa(b.Height())))
	if len(steps) > 0 {
		printKeyValue("drops", scenario.Tokens(sc.Drops))
	}
	return nil
}

// formatStep describes one traced drop.
func formatStep(n int, st batch.Step) string {
	line := StyleDim.Render(fmt.Sprintf("%3d", n)) +
		fmt.Sprintf("  %-4s row %-3d height %d", st.Drop, st.Landed, st.Height)
	if st.Cleared > 0 {
		line += "  " + StyleSuccess.Render(fmt.Sprintf("cleared %d", st.Cleared))
	}
	return line
}
