package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pegtower/pkg/animate"
)

// iterationRow is one iteration plan plus the width of the block it chose,
// read from the pegs as the iteration started.
type iterationRow struct {
	it    animate.Iteration
	width int
}

func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags   runFlags
		noTable bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run the heuristic instantly and report the moves",
		Long: `Run every iteration on a virtual clock, without waiting between moves, and
print one table row per iteration followed by a summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, c.cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			s, err := newSession(ctx, cfg, false)
			if err != nil {
				return err
			}
			printInfo("Solving %s blocks %s", StyleNumber.Render(strconv.Itoa(cfg.Blocks)), StyleDim.Render(fmt.Sprintf("(seed %d)", s.seed)))

			rows, res, err := solve(ctx, s)
			if err != nil {
				return err
			}

			if !noTable && len(rows) > 0 {
				fmt.Println(iterationTable(rows))
			}
			printRunStats(res.Moves, res.Iterations, res.Elapsed, res.Solved)
			if !res.Solved && cfg.Blocks > 0 {
				printNextStep("Not all blocks reached the target peg; try more iterations",
					fmt.Sprintf("pegtower solve -n %d --seed %d --iterations %d", cfg.Blocks, s.seed, cfg.Iterations*2))
			}
			return nil
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().BoolVar(&noTable, "no-table", false, "only print the summary")
	return cmd
}

// solve plays s to completion on a virtual clock.
func solve(ctx context.Context, s *session, opts ...animate.Option) ([]iterationRow, animate.Result, error) {
	m := s.manager
	var rows []iterationRow

	opts = append([]animate.Option{
		animate.WithConfig(s.cfg.AnimateConfig()),
		animate.WithLogger(loggerFromContext(ctx)),
		animate.WithIterationHook(func(it animate.Iteration) {
			row := iterationRow{it: it}
			if !it.Selection.Empty() {
				row.width = m.Peg(it.Selection.Peg)[it.Selection.Index].Width
			}
			rows = append(rows, row)
		}),
	}, opts...)

	res, err := animate.RunVirtual(ctx, m, opts...)
	return rows, res, err
}

// iterationTable renders the iteration plans as a bordered table.
func iterationTable(rows []iterationRow) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		if r.it.Selection.Empty() {
			data[i] = []string{strconv.Itoa(r.it.Number), "—", "—", "—", "0", "0", formatOffset(r.it.Start)}
			continue
		}
		data[i] = []string{
			strconv.Itoa(r.it.Number),
			strconv.Itoa(r.it.Selection.Peg),
			strconv.Itoa(r.it.Selection.Index),
			strconv.Itoa(r.width),
			strconv.Itoa(r.it.Shuttles),
			strconv.Itoa(r.it.Moves()),
			formatOffset(r.it.Start),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Peg", "Block", "Width", "Shuttles", "Moves", "Start").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if rows[row].it.Selection.Empty() {
				return cellStyle.Foreground(colorDim)
			}
			if col == 3 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		}).
		Render()
}

// formatOffset prints a scheduler time such as "1.7s".
func formatOffset(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
