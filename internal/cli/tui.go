package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pegtower/pkg/animate"
	"github.com/matzehuels/pegtower/pkg/peg"
	"github.com/matzehuels/pegtower/pkg/schedule"
)

// cellWidth is how many pixels of block width one terminal cell stands for.
const cellWidth = 5

var (
	pegLabelStyle = lipgloss.NewStyle().Foreground(colorGray)
	pegBaseStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Messages
// =============================================================================

type frameMsg animate.Frame

type doneMsg animate.Result

// =============================================================================
// AnimationModel - Live peg view
// =============================================================================

// AnimationModel is the bubbletea model replaying a run.
type AnimationModel struct {
	Blocks     int
	Iterations int
	Seed       uint64
	Geometry   peg.Geometry

	Frame  *animate.Frame
	Result *animate.Result

	cancel   context.CancelFunc
	quitting bool
}

// NewAnimationModel creates a model showing the initial state of s.
func NewAnimationModel(s *session, cancel context.CancelFunc) AnimationModel {
	initial := animate.Frame{Snapshot: s.manager.Snapshot()}
	return AnimationModel{
		Blocks:     s.manager.Count(),
		Iterations: s.cfg.Iterations,
		Seed:       s.seed,
		Geometry:   s.manager.Geometry(),
		Frame:      &initial,
		cancel:     cancel,
	}
}

func (m AnimationModel) Init() tea.Cmd {
	return nil
}

func (m AnimationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case frameMsg:
		f := animate.Frame(msg)
		m.Frame = &f
	case doneMsg:
		r := animate.Result(msg)
		m.Result = &r
		return m, tea.Quit
	}
	return m, nil
}

func (m AnimationModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Pegtower"))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d blocks · seed %d", m.Blocks, m.Seed)))
	b.WriteString("\n\n")

	if m.Frame != nil {
		b.WriteString(renderPegs(m.Frame.Snapshot, m.Geometry))
		b.WriteString("\n\n")
	}

	switch {
	case m.Result != nil:
		status := StyleSuccess.Render("solved")
		if !m.Result.Solved {
			status = StyleWarning.Render("unsolved")
		}
		b.WriteString(fmt.Sprintf("%d moves were required. %s\n", m.Result.Moves, status))
	case m.Frame != nil:
		b.WriteString(StyleDim.Render(fmt.Sprintf("iteration %d/%d · %d moves · %s",
			m.Frame.Iteration, m.Iterations, m.Frame.Snapshot.Moves, formatOffset(m.Frame.At))))
		b.WriteString("\n")
	}
	if m.Result == nil && !m.quitting {
		b.WriteString(StyleDim.Render("q quit"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderPegs draws the three pegs side by side, bottom-aligned, one text row
// per block.
func renderPegs(snap peg.Snapshot, g peg.Geometry) string {
	height := 0
	for _, p := range snap.Pegs {
		height = max(height, len(p))
	}
	colWidth := max(g.MaxBlockWidth/cellWidth, 1) + 2

	cols := make([]string, peg.Count)
	for i, p := range snap.Pegs {
		style := StyleBlock
		if i == peg.Target {
			style = StyleTarget
		}

		rows := make([]string, 0, height+2)
		for r := height - 1; r >= 0; r-- {
			if r >= len(p) {
				rows = append(rows, strings.Repeat(" ", colWidth))
				continue
			}
			cells := max(p[r].Width/cellWidth, 1)
			rows = append(rows, lipgloss.PlaceHorizontal(colWidth, lipgloss.Center, style.Render(strings.Repeat("█", cells))))
		}
		rows = append(rows, pegBaseStyle.Render(strings.Repeat("─", colWidth)))
		rows = append(rows, lipgloss.PlaceHorizontal(colWidth, lipgloss.Center, pegLabelStyle.Render(fmt.Sprintf("peg %d", i))))
		cols[i] = strings.Join(rows, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, cols[0], " ", cols[1], " ", cols[2])
}

// =============================================================================
// Animate Command
// =============================================================================

func (c *CLI) animateCommand() *cobra.Command {
	var (
		flags runFlags
		speed float64
	)

	cmd := &cobra.Command{
		Use:   "animate",
		Short: "Replay the heuristic in the terminal in real time",
		Long: `Animate the run in the terminal, repainting after every single-block move
with the configured delays. Press q to stop early.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, c.cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("speed") {
				speed = cfg.Render.Speed
			}
			if speed <= 0 {
				return fmt.Errorf("speed must be > 0, got %g", speed)
			}
			return runAnimate(cmd.Context(), cfg, speed)
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().Float64Var(&speed, "speed", 1, "playback speed multiplier")
	return cmd
}

// runAnimate drives the model from a real-time scheduler. Frames reach the
// program through Send, so peg state is only touched on the scheduler goroutine.
func runAnimate(ctx context.Context, cfg Config, speed float64) error {
	logger := loggerFromContext(ctx)

	s, err := newSession(ctx, cfg, false)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	acfg := cfg.AnimateConfig()
	acfg.Step = time.Duration(float64(acfg.Step) / speed)
	acfg.Slack = time.Duration(float64(acfg.Slack) / speed)

	p := tea.NewProgram(NewAnimationModel(s, cancel), tea.WithContext(ctx))

	loop := schedule.NewLoop()
	a := animate.New(s.manager, loop,
		animate.WithConfig(acfg),
		animate.WithLogger(discardLogger()),
		animate.WithFrameHook(func(f animate.Frame) { p.Send(frameMsg(f)) }),
		animate.WithOnComplete(func(r animate.Result) { p.Send(doneMsg(r)) }),
	)
	a.Solve(runCtx)

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(runCtx) }()

	final, err := p.Run()
	cancel()
	<-loopErr
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return err
	}

	if model, ok := final.(AnimationModel); ok && model.Result != nil {
		logger.Infof("%d moves were required.", model.Result.Moves)
		return model.Result.Err
	}
	logger.Info("Animation stopped", "moves", s.manager.Moves())
	return nil
}
