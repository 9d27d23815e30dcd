// Package pkg provides the core libraries for pegtower.
//
// # Overview
//
// Pegtower stacks randomly sized blocks on the first of three pegs and
// repeatedly moves the widest reachable block onto the third peg, repainting
// after every single-block move. The pkg directory is organized as follows:
//
//  1. [peg] - Blocks, layout and the three-peg manager
//  2. [animate] - The widest-block heuristic, paced by a scheduler
//  3. [schedule] - Virtual and real-time task queues
//  4. [render/sink] - SVG, PNG, PDF, GIF and JSON output
//  5. [cache] - Encoded frame cache used by the HTTP server
//  6. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow through pegtower:
//
//	peg.NewManager (random widths, seeded)
//	         ↓
//	animate.Animator (one plan per iteration)
//	         ↓
//	schedule.Virtual or schedule.Loop (timed moves)
//	         ↓
//	peg.Surface / animate.Frame → render/sink
//
// # Quick Start
//
// Play a run instantly and render its final state:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/pegtower/pkg/animate"
//	    "github.com/matzehuels/pegtower/pkg/peg"
//	    "github.com/matzehuels/pegtower/pkg/render/sink"
//	)
//
//	m, _ := peg.NewManager(5, peg.WithRand(peg.NewRand(42)))
//	res, _ := animate.RunVirtual(context.Background(), m)
//	svg := sink.RenderSVG(m.Snapshot())
//	fmt.Printf("%d moves\n", res.Moves)
//
// [peg]: https://pkg.go.dev/github.com/matzehuels/pegtower/pkg/peg
// [animate]: https://pkg.go.dev/github.com/matzehuels/pegtower/pkg/animate
// [schedule]: https://pkg.go.dev/github.com/matzehuels/pegtower/pkg/schedule
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/pegtower/pkg/render/sink
// [cache]: https://pkg.go.dev/github.com/matzehuels/pegtower/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/pegtower/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pegtower/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pegtower/pkg/buildinfo
package pkg
