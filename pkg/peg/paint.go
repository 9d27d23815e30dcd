package peg

import "image/color"

// Colours used by Paint.
var (
	Background color.Color = color.White
	Foreground color.Color = color.Black
)

// Surface is a 2-D drawing target able to fill rectangles.
type Surface interface {
	// ClearRect erases r with colour c.
	ClearRect(r Rect, c color.Color)
	// FillRect paints r with colour c.
	FillRect(r Rect, c color.Color)
}

// Snapshot is an immutable copy of the manager state taken at a repaint.
type Snapshot struct {
	Pegs   Pegs
	Moves  int
	Bounds Rect
}

// Snapshot copies the current pegs and move counter.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{Pegs: m.pegs.Clone(), Moves: m.moves, Bounds: m.Bounds()}
}

// Bounds returns the stack area cleared before every repaint.
//
// It spans all pegs horizontally, starting half a maximum block width left of
// the origin, and is tall enough for every block stacked on one peg.
func (m *Manager) Bounds() Rect {
	g := m.geom
	return Rect{
		X: g.Origin.X - g.MaxBlockWidth/2,
		Y: g.Origin.Y - (m.count-1)*g.Pitch(),
		W: Count * g.StackWidth,
		H: m.count * g.Pitch(),
	}
}

// Paint clears the stack area and draws every block.
func (m *Manager) Paint(s Surface) {
	paint(s, m.Bounds(), &m.pegs)
}

// Paint draws the snapshot the same way Manager.Paint draws live state.
func (s Snapshot) Paint(dst Surface) {
	paint(dst, s.Bounds, &s.Pegs)
}

func paint(s Surface, bounds Rect, pegs *Pegs) {
	s.ClearRect(bounds, Background)
	for _, p := range pegs {
		for _, b := range p {
			s.FillRect(b.Rect(), Foreground)
		}
	}
}
