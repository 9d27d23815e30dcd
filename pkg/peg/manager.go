package peg

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pegtower/pkg/errors"
)

// Option configures a Manager.
type Option func(*Manager)

// WithGeometry overrides DefaultGeometry.
func WithGeometry(g Geometry) Option { return func(m *Manager) { m.geom = g } }

// WithWidths sets the width source for generated blocks.
func WithWidths(w WidthFunc) Option { return func(m *Manager) { m.widths = w } }

// WithRand draws block widths from r.
func WithRand(r *rand.Rand) Option { return func(m *Manager) { m.widths = RandomWidths(r) } }

// WithStrictCount makes NewManager reject counts outside [MinBlocks, MaxBlocks]
// instead of warning.
func WithStrictCount() Option { return func(m *Manager) { m.strict = true } }

// WithWarn sets the callback that receives the out-of-range warning.
// The default logs it on the package logger.
func WithWarn(fn func(error)) Option { return func(m *Manager) { m.warn = fn } }

// WithLogger sets the logger used for move tracing.
func WithLogger(l *log.Logger) Option { return func(m *Manager) { m.logger = l } }

// Manager owns the three pegs and the move counter.
type Manager struct {
	geom   Geometry
	count  int
	pegs   Pegs
	moves  int
	strict bool
	widths WidthFunc
	warn   func(error)
	logger *log.Logger
}

// NewManager builds count blocks on peg 0.
//
// Counts outside [MinBlocks, MaxBlocks] are reported through the warn callback
// and used anyway, unless WithStrictCount is set, in which case the validation
// error is returned.
func NewManager(count int, opts ...Option) (*Manager, error) {
	m := &Manager{
		geom:   DefaultGeometry(),
		count:  count,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.widths == nil {
		m.widths = RandomWidths(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	}
	if m.warn == nil {
		m.warn = func(err error) {
			m.logger.Warn("Invalid amount of blocks, they might not all be displayed", "count", count, "err", errors.UserMessage(err))
		}
	}

	if err := ValidateCount(count); err != nil {
		if m.strict {
			return nil, err
		}
		m.warn(err)
	}

	m.pegs = BuildInitialPegs(count, m.geom, m.widths)
	return m, nil
}

// ValidateCount reports whether count is within [MinBlocks, MaxBlocks].
func ValidateCount(count int) error {
	return errors.ValidateRange(errors.ErrCodeInvalidBlockCount, "block count", count, MinBlocks, MaxBlocks)
}

// Geometry returns the layout the manager positions blocks with.
func (m *Manager) Geometry() Geometry { return m.geom }

// Count returns the configured number of blocks.
func (m *Manager) Count() int { return m.count }

// Moves returns how many successful moves have been made.
func (m *Manager) Moves() int { return m.moves }

// Len returns the number of blocks on peg p.
func (m *Manager) Len(p int) int { return len(m.pegs[p]) }

// Peg returns a copy of peg p, bottom first.
func (m *Manager) Peg(p int) []Block { return append([]Block(nil), m.pegs[p]...) }

// Pegs returns a deep copy of all pegs.
func (m *Manager) Pegs() Pegs { return m.pegs.Clone() }

// Total returns the number of blocks across all pegs.
func (m *Manager) Total() int { return m.pegs.Total() }

// TowerHeight returns the vertical extent of peg p, including the gap above
// every block.
func (m *Manager) TowerHeight(p int) int {
	return len(m.pegs[p]) * m.geom.Pitch()
}

// MoveBlock moves the top block of src onto dst.
//
// The block is shifted horizontally by the peg distance and placed on top of
// dst using dst's height before the push.
func (m *Manager) MoveBlock(src, dst int) error {
	if err := checkPeg(src); err != nil {
		return err
	}
	if err := checkPeg(dst); err != nil {
		return err
	}
	if src == dst {
		return errors.New(errors.ErrCodeInvalidPeg, "source and destination are both peg %d", src)
	}
	n := len(m.pegs[src])
	if n == 0 {
		return errors.New(errors.ErrCodeEmptyPeg, "cannot move from empty peg %d", src)
	}

	b := m.pegs[src][n-1]
	m.pegs[src] = m.pegs[src][:n-1]

	b.X += m.geom.StackWidth * (dst - src)
	b.Y = m.geom.Origin.Y - m.TowerHeight(dst)

	m.pegs[dst] = append(m.pegs[dst], b)
	m.moves++

	m.logger.Debug("Moved block", "block", b.ID, "width", b.Width, "from", src, "to", dst, "moves", m.moves)
	return nil
}

// IndexOfWidestBlock returns the index of the widest block on peg p, or -1 if
// the peg is empty. The scan runs from the top down and only replaces its
// candidate on a strictly wider block, so the topmost of equal maxima wins.
func (m *Manager) IndexOfWidestBlock(p int) int {
	return indexOfWidest(m.pegs[p])
}

func indexOfWidest(blocks []Block) int {
	idx := len(blocks) - 1
	for i := idx - 1; i >= 0; i-- {
		if blocks[i].Width > blocks[idx].Width {
			idx = i
		}
	}
	return idx
}

// Selection identifies a block by peg and position within that peg.
type Selection struct {
	Peg   int
	Index int
}

// Empty reports whether the selection points at no block.
func (s Selection) Empty() bool { return s.Index < 0 }

// WidestAcrossFirstTwoPegs picks the wider of the widest blocks on pegs 0 and 1.
// An empty peg counts as width 0. Peg 0 wins only when strictly wider, so ties
// and two empty pegs select peg 1.
func (m *Manager) WidestAcrossFirstTwoPegs() Selection {
	i0 := m.IndexOfWidestBlock(First)
	i1 := m.IndexOfWidestBlock(Second)

	w0, w1 := 0, 0
	if i0 >= 0 {
		w0 = m.pegs[First][i0].Width
	}
	if i1 >= 0 {
		w1 = m.pegs[Second][i1].Width
	}

	if w0 > w1 {
		return Selection{Peg: First, Index: i0}
	}
	return Selection{Peg: Second, Index: i1}
}

func checkPeg(p int) error {
	if p < 0 || p >= Count {
		return errors.New(errors.ErrCodeInvalidPeg, "peg %d outside [0, %d]", p, Count-1)
	}
	return nil
}
