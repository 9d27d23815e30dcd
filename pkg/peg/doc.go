// Package peg models the three-peg stack-transfer puzzle that pegtower animates.
//
// # Overview
//
// A [Manager] owns three ordered pegs of [Block] values. Blocks are generated
// once by [BuildInitialPegs] with random odd widths and are afterwards only
// relocated with [Manager.MoveBlock], the single state-mutating primitive.
// Every move recomputes the block's position from its destination peg, so a
// block never carries a stale position.
//
// # Geometry
//
// Positions follow a fixed [Geometry]: blocks are centred on the origin of
// peg 0, stacked upwards with a one pixel gap, and pegs are spaced
// [Geometry.StackWidth] pixels apart. [DefaultGeometry] reproduces the layout
// pegtower has always drawn:
//
//	origin (50, 120), block height 9, stack width 100, max block width 90
//
// # Widest-Block Selection
//
// [Manager.IndexOfWidestBlock] scans a peg from the top down and keeps the
// first maximum it meets, so the topmost of equal widths wins.
// [Manager.WidestAcrossFirstTwoPegs] compares pegs 0 and 1 and prefers peg 1
// unless peg 0 is strictly wider.
//
// # Painting
//
// [Manager.Paint] clears the stack area and fills every block on a [Surface].
// Surfaces live in the render/sink package (SVG, PNG) or in the caller.
//
// A Manager is not safe for concurrent use. The animate package drives it
// from a single scheduler goroutine.
package peg
