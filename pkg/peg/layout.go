package peg

// Peg indices. Pegs 0 and 1 are working pegs; peg 2 receives delivered blocks.
const (
	First  = 0
	Second = 1
	Target = 2

	// Count is the number of pegs.
	Count = 3
)

// Block count limits. Counts outside the range still work but may not fit the
// painted area.
const (
	MinBlocks = 0
	MaxBlocks = 10

	// DefaultBlocks is the block count used when none is configured.
	DefaultBlocks = 5
)

// Geometry fixes where blocks are drawn.
type Geometry struct {
	Origin        Point // bottom-centre reference of peg 0
	BlockHeight   int
	StackWidth    int // horizontal distance between neighbouring pegs
	MaxBlockWidth int // used to size the cleared area
}

// DefaultGeometry returns the classic pegtower layout.
func DefaultGeometry() Geometry {
	return Geometry{
		Origin:        Point{X: 50, Y: 120},
		BlockHeight:   9,
		StackWidth:    100,
		MaxBlockWidth: MaxBlockWidth,
	}
}

// Pitch returns the vertical distance between stacked blocks (height plus a
// one pixel gap).
func (g Geometry) Pitch() int { return g.BlockHeight + 1 }

// Pegs holds the blocks of all pegs, last element of each slice on top.
type Pegs [Count][]Block

// Total returns the number of blocks across all pegs.
func (p Pegs) Total() int {
	n := 0
	for _, s := range p {
		n += len(s)
	}
	return n
}

// Clone returns a deep copy.
func (p Pegs) Clone() Pegs {
	var out Pegs
	for i, s := range p {
		out[i] = append([]Block(nil), s...)
	}
	return out
}

// BuildInitialPegs creates count blocks on peg 0.
//
// Block i is centred on the origin and raised by i pitches, so the block built
// last sits highest and is the first one a move takes. Pegs 1 and 2 start
// empty. A negative count yields no blocks.
func BuildInitialPegs(count int, g Geometry, width WidthFunc) Pegs {
	var pegs Pegs
	if count <= 0 {
		return pegs
	}
	pegs[First] = make([]Block, 0, count)
	for i := range count {
		w := width()
		pegs[First] = append(pegs[First], Block{
			ID:     i,
			X:      g.Origin.X - w/2,
			Y:      g.Origin.Y - i*g.Pitch(),
			Width:  w,
			Height: g.BlockHeight,
		})
	}
	return pegs
}
