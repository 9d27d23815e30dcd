package sink

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/matzehuels/pegtower/pkg/observability"
	"github.com/matzehuels/pegtower/pkg/peg"
)

// SVGCanvas is a peg.Surface that records rectangles as SVG elements.
type SVGCanvas struct {
	width, height int
	body          bytes.Buffer
	rects         int
}

// NewSVGCanvas returns an empty canvas of the given size.
func NewSVGCanvas(width, height int) *SVGCanvas {
	return &SVGCanvas{width: width, height: height}
}

// ClearRect records r filled with the background colour c.
func (s *SVGCanvas) ClearRect(r peg.Rect, c color.Color) {
	s.rect("clear", r, c)
}

// FillRect records r filled with c.
func (s *SVGCanvas) FillRect(r peg.Rect, c color.Color) {
	s.rect("block", r, c)
}

func (s *SVGCanvas) rect(class string, r peg.Rect, c color.Color) {
	fmt.Fprintf(&s.body, `  <rect class="%s" x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
		class, r.X, r.Y, r.W, r.H, hexColor(c))
	s.rects++
}

// Rects returns how many rectangles have been recorded.
func (s *SVGCanvas) Rects() int { return s.rects }

// Reset discards everything recorded so far.
func (s *SVGCanvas) Reset() {
	s.body.Reset()
	s.rects = 0
}

// Bytes returns the complete SVG document.
func (s *SVGCanvas) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.width, s.height, s.width, s.height)
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

var _ peg.Surface = (*SVGCanvas)(nil)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height int
}

// WithSVGSize overrides the canvas size derived from the snapshot bounds.
func WithSVGSize(w, h int) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// RenderSVG paints snap onto a fresh SVG canvas.
func RenderSVG(snap peg.Snapshot, opts ...SVGOption) []byte {
	start := time.Now()
	observability.Render().OnRenderStart(context.Background(), "svg", 1)

	r := svgRenderer{}
	r.width, r.height = CanvasSize(snap.Bounds)
	for _, opt := range opts {
		opt(&r)
	}

	c := NewSVGCanvas(r.width, r.height)
	snap.Paint(c)
	out := c.Bytes()

	observability.Render().OnRenderComplete(context.Background(), "svg", len(out), time.Since(start), nil)
	return out
}
