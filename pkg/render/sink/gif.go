package sink

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"time"

	"github.com/matzehuels/pegtower/pkg/animate"
	"github.com/matzehuels/pegtower/pkg/errors"
	"github.com/matzehuels/pegtower/pkg/observability"
)

// lastFrameDelay is how long the final frame stays up before the GIF loops.
const lastFrameDelay = 2 * time.Second

// grayPalette has 16 evenly spaced greys so anti-aliased edges survive.
var grayPalette = func() color.Palette {
	p := make(color.Palette, 16)
	for i := range p {
		v := uint8(i * 17)
		p[i] = color.Gray{Y: v}
	}
	return p
}()

// GIFOption configures GIF rendering.
type GIFOption func(*gifRenderer)

type gifRenderer struct {
	scale     float64
	loopCount int
	speed     float64
}

// WithGIFScale sets the raster scale factor (default 1).
func WithGIFScale(s float64) GIFOption { return func(r *gifRenderer) { r.scale = s } }

// WithSpeed plays the animation faster (>1) or slower (<1) than real time.
func WithSpeed(f float64) GIFOption { return func(r *gifRenderer) { r.speed = f } }

// WithLoopCount sets how often the GIF repeats; 0 loops forever, -1 plays once.
func WithLoopCount(n int) GIFOption { return func(r *gifRenderer) { r.loopCount = n } }

// RenderGIF encodes frames as an animated GIF. Each frame stays visible until
// the next one was painted. All frames use the canvas size of the first.
func RenderGIF(frames []animate.Frame, opts ...GIFOption) ([]byte, error) {
	start := time.Now()
	observability.Render().OnRenderStart(context.Background(), "gif", len(frames))

	out, err := renderGIF(frames, opts...)

	observability.Render().OnRenderComplete(context.Background(), "gif", len(out), time.Since(start), err)
	return out, err
}

func renderGIF(frames []animate.Frame, opts ...GIFOption) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no frames to encode")
	}

	r := gifRenderer{scale: 1, speed: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.speed <= 0 {
		r.speed = 1
	}

	w, h := CanvasSize(frames[0].Snapshot.Bounds)
	anim := &gif.GIF{LoopCount: r.loopCount}
	for i, f := range frames {
		c := NewPNGCanvas(w, h, r.scale)
		f.Snapshot.Paint(c)

		src := c.Image()
		pal := image.NewPaletted(src.Bounds(), grayPalette)
		draw.Draw(pal, pal.Bounds(), src, src.Bounds().Min, draw.Src)

		hold := lastFrameDelay
		if i+1 < len(frames) {
			hold = frames[i+1].At - f.At
		}
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, centiseconds(hold, r.speed))
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode gif")
	}
	return buf.Bytes(), nil
}

func centiseconds(d time.Duration, speed float64) int {
	return max(int(float64(d)/speed/float64(10*time.Millisecond)), 1)
}
