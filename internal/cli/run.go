package cli

import (
	"context"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pegtower/pkg/errors"
	"github.com/matzehuels/pegtower/pkg/peg"
)

// session is one configured puzzle ready to animate.
type session struct {
	cfg     Config
	seed    uint64
	manager *peg.Manager
}

// newSession builds the manager for cfg. A zero seed is replaced by a random
// one, which is logged so the run can be repeated with --seed.
//
// Out-of-range block counts print a warning and proceed unless cfg.Strict is
// set. Pass quiet to keep the warning off stdout (the serve command reports it
// in the response instead).
func newSession(ctx context.Context, cfg Config, quiet bool) (*session, error) {
	logger := loggerFromContext(ctx)

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
		logger.Debug("Using random seed", "seed", seed)
	}

	opts := []peg.Option{
		peg.WithGeometry(cfg.PegGeometry()),
		peg.WithRand(peg.NewRand(seed)),
		peg.WithLogger(logger),
		peg.WithWarn(func(err error) {
			if !quiet {
				printWarning("Invalid amount of blocks, they might not all be displayed")
			}
			logger.Warn("Block count out of range", "count", cfg.Blocks, "err", errors.UserMessage(err))
		}),
	}
	if cfg.Strict {
		opts = append(opts, peg.WithStrictCount())
	}

	m, err := peg.NewManager(cfg.Blocks, opts...)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, seed: seed, manager: m}, nil
}

// discardLogger drops everything; used while a TUI owns the terminal.
func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
