// Package animate drives the widest-block heuristic on a peg.Manager.
//
// Each iteration scans pegs 0 and 1 for the widest block, shuttles the blocks
// above it to the other working peg, then delivers it to peg 2. Every
// single-block move is a separate task on a [schedule.Scheduler], spaced
// [Config.Step] apart and followed by a repaint, so the run can be watched.
//
// The selection is made once per iteration, when the iteration starts, and
// the same [Iteration] plan decides both which moves are scheduled and how
// long the iteration lasts. The next iteration is scheduled at the end of the
// current one, so iterations never overlap.
//
// The heuristic always runs [Config.Iterations] times. Once pegs 0 and 1 are
// empty the remaining iterations move nothing.
//
// # Example
//
//	m, _ := peg.NewManager(3, peg.WithRand(peg.NewRand(42)))
//	res, err := animate.RunVirtual(ctx, m)
//	fmt.Println(res.Moves)
package animate
