package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pegtower/pkg/observability"
)

// logHooks reports animation and render events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnIteration(_ context.Context, iteration, pegIdx, blockIdx, shuttles int) {
	h.logger.Debug("iteration", "n", iteration, "peg", pegIdx, "block", blockIdx, "shuttles", shuttles)
}

func (h logHooks) OnMove(_ context.Context, src, dst, moves int) {
	h.logger.Debug("move", "src", src, "dst", dst, "moves", moves)
}

func (h logHooks) OnComplete(_ context.Context, moves int, elapsed time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "moves", moves, "elapsed", elapsed, "err", err)
		return
	}
	h.logger.Debug("run complete", "moves", moves, "elapsed", elapsed)
}

func (h logHooks) OnRenderStart(_ context.Context, format string, frames int) {
	h.logger.Debug("render start", "format", format, "frames", frames)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, size int, dur time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render complete", "format", format, "bytes", size, "took", dur.Round(time.Millisecond))
}

// installLogHooks routes observability events to l.
func installLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetAnimationHooks(h)
	observability.SetRenderHooks(h)
}
