package sink

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/pegtower/pkg/peg"
)

// bottomMargin is the space left under the lowest block.
const bottomMargin = 10

// CanvasSize returns the width and height needed to show bounds.
func CanvasSize(bounds peg.Rect) (w, h int) {
	w = max(2*bounds.X+bounds.W, 1)
	h = max(bounds.Y+bounds.H+bottomMargin, 1)
	return w, h
}

// hexColor formats c as #rrggbb.
func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
