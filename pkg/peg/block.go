package peg

import "math/rand/v2"

// Width limits for generated blocks.
const (
	// MinBlockWidth is the narrowest width RandomBlockWidth can return.
	MinBlockWidth = 9
	// MaxBlockWidth is the upper bound of the width step sequence (10, 15, ..., 85).
	// Generated widths never reach it; it sizes the area cleared before painting.
	MaxBlockWidth = 90

	widthBase  = 10
	widthStep  = 5
	widthSteps = 16
)

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle in pixel coordinates, Y growing downwards.
type Rect struct {
	X, Y, W, H int
}

// Block is a single puzzle piece.
type Block struct {
	ID     int // creation index, stable across moves
	X, Y   int // top-left corner
	Width  int
	Height int
}

// Rect returns the area covered by the block.
func (b Block) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, W: b.Width, H: b.Height}
}

// CenterX returns the horizontal centre of the block.
func (b Block) CenterX() int { return b.X + b.Width/2 }

// WidthFunc yields the width of the next generated block.
type WidthFunc func() int

// RandomBlockWidth returns a random odd width in [9, 89].
//
// Widths are multiples of five from 10 so that neighbouring sizes are easy to
// tell apart, then made odd so a block can be centred on a whole pixel.
func RandomBlockWidth(r *rand.Rand) int {
	w := widthBase + r.IntN(widthSteps)*widthStep
	if w%2 == 0 {
		w--
	}
	return w
}

// RandomWidths returns a WidthFunc drawing from r.
func RandomWidths(r *rand.Rand) WidthFunc {
	return func() int { return RandomBlockWidth(r) }
}

// FixedWidths returns a WidthFunc that yields ws in order, starting over once
// exhausted. It panics if ws is empty.
func FixedWidths(ws ...int) WidthFunc {
	if len(ws) == 0 {
		panic("peg: FixedWidths needs at least one width")
	}
	i := 0
	return func() int {
		w := ws[i%len(ws)]
		i++
		return w
	}
}

// NewRand returns the PCG source used for block widths.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}
