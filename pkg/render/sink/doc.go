// Package sink turns peg snapshots and animation frames into output files.
//
// # Overview
//
// Every renderer paints through the [peg.Surface] interface, so what ends up
// in a file is exactly what [peg.Manager.Paint] draws: the cleared stack area
// followed by one filled rectangle per block.
//
//   - SVG: [SVGCanvas] records rectangles as SVG elements ([RenderSVG])
//   - PNG: [PNGCanvas] rasterises with fogleman/gg ([RenderPNG])
//   - PDF: SVG converted with rsvg-convert ([RenderPDF])
//   - GIF: every frame of a run as an animated GIF ([RenderGIF])
//   - JSON: block positions for external tools ([RenderJSON])
//
// # Canvas Size
//
// [CanvasSize] derives the output size from the painted bounds: symmetric
// horizontal margins and a small margin below the lowest block. Blocks outside
// the canvas (block counts above 10) are clipped rather than rescaled.
//
// Basic usage:
//
//	snap := manager.Snapshot()
//	svg := sink.RenderSVG(snap)
//	png, err := sink.RenderPNG(snap, sink.WithScale(2))
package sink
