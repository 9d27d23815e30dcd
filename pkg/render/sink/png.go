package sink

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"time"

	"github.com/fogleman/gg"

	"github.com/matzehuels/pegtower/pkg/errors"
	"github.com/matzehuels/pegtower/pkg/observability"
	"github.com/matzehuels/pegtower/pkg/peg"
)

// PNGCanvas is a peg.Surface backed by a gg raster context.
type PNGCanvas struct {
	dc *gg.Context
}

// NewPNGCanvas returns a white canvas of the given logical size, rasterised at
// scale times that resolution.
func NewPNGCanvas(width, height int, scale float64) *PNGCanvas {
	if scale <= 0 {
		scale = 1
	}
	dc := gg.NewContext(int(float64(width)*scale), int(float64(height)*scale))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(scale, scale)
	return &PNGCanvas{dc: dc}
}

// ClearRect paints r with the background colour c.
func (p *PNGCanvas) ClearRect(r peg.Rect, c color.Color) { p.fill(r, c) }

// FillRect paints r with c.
func (p *PNGCanvas) FillRect(r peg.Rect, c color.Color) { p.fill(r, c) }

func (p *PNGCanvas) fill(r peg.Rect, c color.Color) {
	p.dc.SetColor(c)
	p.dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.W), float64(r.H))
	p.dc.Fill()
}

// Image returns the current raster.
func (p *PNGCanvas) Image() image.Image { return p.dc.Image() }

// Bytes encodes the canvas as PNG.
func (p *PNGCanvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

var _ peg.Surface = (*PNGCanvas)(nil)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

func newPNGRenderer(opts ...PNGOption) pngRenderer {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderPNG paints snap onto a fresh raster and encodes it.
func RenderPNG(snap peg.Snapshot, opts ...PNGOption) ([]byte, error) {
	start := time.Now()
	observability.Render().OnRenderStart(context.Background(), "png", 1)

	r := newPNGRenderer(opts...)
	w, h := CanvasSize(snap.Bounds)
	c := NewPNGCanvas(w, h, r.scale)
	snap.Paint(c)
	out, err := c.Bytes()

	observability.Render().OnRenderComplete(context.Background(), "png", len(out), time.Since(start), err)
	return out, err
}
