package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pegtower/pkg/animate"
	"github.com/matzehuels/pegtower/pkg/errors"
	"github.com/matzehuels/pegtower/pkg/render/sink"
)

// defaultOutputBase is the output path stem when -o is not given.
const defaultOutputBase = "pegtower"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file (single format) or base path (multiple)
	formats   []string // svg, png, pdf, gif, json
	framesDir string   // also write every frame here, one file per frame and format
	scale     float64  // raster scale factor for png and gif
	speed     float64  // gif playback speed
}

func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      runFlags
		formatsStr string
		opts       renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a run to SVG, PNG, PDF, GIF or JSON",
		Long: `Run the heuristic on a virtual clock and write the result.

Still formats (svg, png, pdf, json) show the final frame. The gif format
contains every repaint, each held for as long as it was on screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, c.cfg)
			if err != nil {
				return err
			}
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := sink.ValidateFormat(f); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("scale") {
				opts.scale = cfg.Render.Scale
			}
			if !cmd.Flags().Changed("speed") {
				opts.speed = cfg.Render.Speed
			}
			return runRender(cmd.Context(), cfg, &opts)
		},
	}

	d := DefaultConfig()
	addRunFlags(cmd, &flags)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, gif, json (comma-separated)")
	cmd.Flags().StringVar(&opts.framesDir, "frames", "", "also write every frame into this directory")
	cmd.Flags().Float64Var(&opts.scale, "scale", d.Render.Scale, "raster scale factor for png and gif")
	cmd.Flags().Float64Var(&opts.speed, "speed", d.Render.Speed, "gif playback speed multiplier")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{sink.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

// outputPath derives the file for format. A single format writes to output
// as given; several formats share output as a base path with the format
// extension swapped in.
func outputPath(output, format string, multiple bool) string {
	if output == "" {
		return defaultOutputBase + "." + format
	}
	if !multiple {
		return output
	}
	ext := filepath.Ext(output)
	if sink.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + format
}

// runRender plays a run and writes every requested format.
func runRender(ctx context.Context, cfg Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := newSession(ctx, cfg, false)
	if err != nil {
		return err
	}
	frames, res, err := collectFrames(ctx, s)
	if err != nil {
		return err
	}
	logger.Infof("Captured %d frames over %s", len(frames), formatOffset(res.Elapsed))

	spinner := newSpinnerWithContext(ctx, "Encoding...")
	spinner.Start()

	type output struct {
		path string
		data []byte
	}
	var outputs []output
	multiple := len(opts.formats) > 1
	for _, f := range opts.formats {
		data, err := encode(f, frames, opts.scale, opts.speed)
		if err != nil {
			spinner.StopWithError(fmt.Sprintf("Encoding %s failed", f))
			return err
		}
		outputs = append(outputs, output{path: outputPath(opts.output, f, multiple), data: data})
	}

	var frameFiles int
	if opts.framesDir != "" {
		frameFiles, err = writeFrames(opts.framesDir, opts.formats, frames, opts.scale)
		if err != nil {
			spinner.StopWithError("Writing frames failed")
			return err
		}
	}
	if spinner.Cancelled() {
		spinner.Stop()
		return ctx.Err()
	}
	spinner.Stop()

	for _, o := range outputs {
		if err := writeOutput(o.path, o.data); err != nil {
			return err
		}
	}

	printSuccess("Rendered %d blocks in %d moves", cfg.Blocks, res.Moves)
	for _, o := range outputs {
		printFile(o.path)
	}
	if frameFiles > 0 {
		printDetail("%d frame files in %s", frameFiles, opts.framesDir)
	}
	prog.done("Render complete")
	return nil
}

// collectFrames plays s on a virtual clock and keeps every repaint. A run
// with no iterations still yields its initial state as the only frame.
func collectFrames(ctx context.Context, s *session) ([]animate.Frame, animate.Result, error) {
	var frames []animate.Frame
	_, res, err := solve(ctx, s, animate.WithFrameHook(func(f animate.Frame) {
		frames = append(frames, f)
	}))
	if err != nil {
		return nil, res, err
	}
	if len(frames) == 0 {
		frames = append(frames, animate.Frame{Snapshot: s.manager.Snapshot()})
	}
	return frames, res, nil
}

// encode renders frames in format. Still formats use the last frame.
func encode(format string, frames []animate.Frame, scale, speed float64) ([]byte, error) {
	last := frames[len(frames)-1]
	switch format {
	case sink.FormatSVG:
		return sink.RenderSVG(last.Snapshot), nil
	case sink.FormatPNG:
		return sink.RenderPNG(last.Snapshot, sink.WithScale(scale))
	case sink.FormatPDF:
		return sink.RenderPDF(last.Snapshot)
	case sink.FormatJSON:
		return sink.RenderJSON(last)
	case sink.FormatGIF:
		return sink.RenderGIF(frames, sink.WithGIFScale(scale), sink.WithSpeed(speed))
	}
	return nil, sink.ValidateFormat(format)
}

// writeFrames writes frame-NNNN.<format> for every frame and every per-frame
// format (gif and pdf are skipped). It returns the number of files written.
func writeFrames(dir string, formats []string, frames []animate.Frame, scale float64) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidPath, err, "create frames directory")
	}
	n := 0
	for _, f := range formats {
		if f == sink.FormatGIF || f == sink.FormatPDF {
			continue
		}
		for _, fr := range frames {
			data, err := encode(f, []animate.Frame{fr}, scale, 1)
			if err != nil {
				return n, err
			}
			path := filepath.Join(dir, fmt.Sprintf("frame-%04d.%s", fr.Index, f))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return n, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
			}
			n++
		}
	}
	return n, nil
}

func writeOutput(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
