package animate

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pegtower/pkg/observability"
	"github.com/matzehuels/pegtower/pkg/peg"
	"github.com/matzehuels/pegtower/pkg/schedule"
)

// Timing and iteration defaults.
const (
	DefaultIterations = 10
	DefaultStep       = 300 * time.Millisecond
	DefaultSlack      = 500 * time.Millisecond
)

// Config controls the pacing of a run.
type Config struct {
	Iterations int           // heuristic passes, regardless of convergence
	Step       time.Duration // delay between consecutive moves
	Slack      time.Duration // extra pause after each delivery
}

// DefaultConfig returns 10 iterations, 300ms steps and 500ms slack.
func DefaultConfig() Config {
	return Config{
		Iterations: DefaultIterations,
		Step:       DefaultStep,
		Slack:      DefaultSlack,
	}
}

// Option configures an Animator.
type Option func(*Animator)

// WithConfig overrides DefaultConfig.
func WithConfig(c Config) Option { return func(a *Animator) { a.cfg = c } }

// WithSurface repaints the manager onto s after every move.
func WithSurface(s peg.Surface) Option { return func(a *Animator) { a.surface = s } }

// WithFrameHook registers fn to receive a Frame at every repaint.
func WithFrameHook(fn func(Frame)) Option {
	return func(a *Animator) { a.onFrame = append(a.onFrame, fn) }
}

// WithIterationHook registers fn to receive each iteration plan as it starts.
func WithIterationHook(fn func(Iteration)) Option {
	return func(a *Animator) { a.onIteration = append(a.onIteration, fn) }
}

// WithOnComplete registers fn to receive the final Result.
func WithOnComplete(fn func(Result)) Option { return func(a *Animator) { a.onComplete = fn } }

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option { return func(a *Animator) { a.logger = l } }

// Iteration is the plan for one heuristic pass.
type Iteration struct {
	Number    int           // 1-based
	Selection peg.Selection // block to deliver
	Spare     int           // working peg receiving shuttled blocks
	Shuttles  int           // blocks stacked above the selected one
	Start     time.Duration // scheduler time the pass begins
	Duration  time.Duration // time until the next pass may begin
}

// Moves returns how many moves the iteration performs.
func (it Iteration) Moves() int {
	if it.Selection.Empty() {
		return 0
	}
	return it.Shuttles + 1
}

// Frame is the state captured at one repaint.
type Frame struct {
	Index     int           // 0-based, in paint order
	At        time.Duration // scheduler time of the repaint
	Iteration int           // iteration that produced the frame
	Snapshot  peg.Snapshot
}

// Result summarises a finished run.
type Result struct {
	Moves      int
	Iterations int
	Frames     int
	Elapsed    time.Duration // scheduler time from Solve to the final report
	Solved     bool          // every block ended on peg 2
	Err        error         // first move failure, if any
}

// Animator runs the heuristic on one Manager.
type Animator struct {
	m      *peg.Manager
	sched  schedule.Scheduler
	cfg    Config
	logger *log.Logger

	surface     peg.Surface
	onFrame     []func(Frame)
	onIteration []func(Iteration)
	onComplete  func(Result)

	ctx       context.Context
	state     State
	started   time.Duration
	frames    int
	completed int
	err       error
	done      bool
	result    Result
}

// New returns an Animator for m that schedules its moves on s.
func New(m *peg.Manager, s schedule.Scheduler, opts ...Option) *Animator {
	a := &Animator{
		m:      m,
		sched:  s,
		cfg:    DefaultConfig(),
		logger: log.Default(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the phase of the current iteration.
func (a *Animator) State() State { return a.state }

// Done reports whether the final report has fired.
func (a *Animator) Done() bool { return a.done }

// Result returns the final result. It is only meaningful once Done is true.
func (a *Animator) Result() Result { return a.result }

// Plan computes the iteration that delivering sel would take from the current
// state. It does not change anything.
func (a *Animator) Plan(sel peg.Selection) Iteration {
	it := Iteration{Selection: sel, Spare: spareFor(sel.Peg)}
	if !sel.Empty() {
		it.Shuttles = a.m.Len(sel.Peg) - 1 - sel.Index
	}
	it.Duration = time.Duration(it.Shuttles+1)*a.cfg.Step + a.cfg.Slack
	return it
}

// Solve schedules the whole run starting at the scheduler's current time.
// Tasks stop doing anything once ctx is done.
func (a *Animator) Solve(ctx context.Context) {
	a.ctx = ctx
	a.started = a.sched.Now()
	a.logger.Info("Solving", "blocks", a.m.Count(), "iterations", a.cfg.Iterations, "step", a.cfg.Step)

	if a.cfg.Iterations <= 0 {
		a.sched.At(a.started, a.finish)
		return
	}
	a.sched.At(a.started, func() { a.iterate(1, a.started) })
}

func (a *Animator) iterate(n int, start time.Duration) {
	if a.stopped() {
		return
	}

	a.state = Scanning
	it := a.Plan(a.m.WidestAcrossFirstTwoPegs())
	it.Number, it.Start = n, start

	a.logger.Info("Selected widest block", "iteration", n, "peg", it.Selection.Peg, "block", it.Selection.Index)
	observability.Animation().OnIteration(a.ctx, n, it.Selection.Peg, it.Selection.Index, it.Shuttles)
	for _, fn := range a.onIteration {
		fn(it)
	}
	a.repaint(n)

	if it.Selection.Empty() {
		a.logger.Debug("Nothing left to deliver", "iteration", n)
		a.state = Idle
	} else {
		a.state = Shuttling
		for k := 1; k <= it.Shuttles; k++ {
			a.sched.At(start+time.Duration(k)*a.cfg.Step, func() {
				a.move(it.Selection.Peg, it.Spare, n)
			})
		}
		a.sched.At(start+time.Duration(it.Shuttles+1)*a.cfg.Step, func() {
			a.state = Delivering
			a.move(it.Selection.Peg, peg.Target, n)
			a.state = Idle
		})
	}

	next := start + it.Duration
	if n < a.cfg.Iterations {
		a.sched.At(next, func() { a.iterate(n+1, next) })
		return
	}
	a.sched.At(next, a.finish)
}

func (a *Animator) move(src, dst, iteration int) {
	if a.stopped() {
		return
	}
	if err := a.m.MoveBlock(src, dst); err != nil {
		a.logger.Error("Move failed, stopping run", "from", src, "to", dst, "err", err)
		a.err = err
		a.finish()
		return
	}
	observability.Animation().OnMove(a.ctx, src, dst, a.m.Moves())
	a.repaint(iteration)
}

func (a *Animator) repaint(iteration int) {
	if a.surface != nil {
		a.m.Paint(a.surface)
	}
	if len(a.onFrame) > 0 {
		f := Frame{
			Index:     a.frames,
			At:        a.sched.Now(),
			Iteration: iteration,
			Snapshot:  a.m.Snapshot(),
		}
		for _, fn := range a.onFrame {
			fn(f)
		}
	}
	a.frames++
	a.completed = iteration
}

func (a *Animator) finish() {
	if a.done {
		return
	}
	a.done = true
	a.state = Idle
	a.result = Result{
		Moves:      a.m.Moves(),
		Iterations: a.completed,
		Frames:     a.frames,
		Elapsed:    a.sched.Now() - a.started,
		Solved:     a.m.Len(peg.Target) == a.m.Total(),
		Err:        a.err,
	}
	a.logger.Infof("%d moves were required.", a.result.Moves)
	observability.Animation().OnComplete(a.ctx, a.result.Moves, a.result.Elapsed, a.err)
	if a.onComplete != nil {
		a.onComplete(a.result)
	}
}

func (a *Animator) stopped() bool {
	return a.done || a.ctx.Err() != nil
}

// spareFor returns the working peg that is not p.
func spareFor(p int) int {
	if p == peg.First {
		return peg.Second
	}
	return peg.First
}

// RunVirtual plays a complete run on a fresh virtual clock and returns its
// result. Frames and iteration plans reach the hooks in opts as they happen.
func RunVirtual(ctx context.Context, m *peg.Manager, opts ...Option) (Result, error) {
	v := schedule.NewVirtual()
	a := New(m, v, opts...)
	a.Solve(ctx)
	v.Run()

	if err := ctx.Err(); err != nil {
		return a.Result(), err
	}
	res := a.Result()
	return res, res.Err
}
