package sink

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/matzehuels/pegtower/pkg/errors"
	"github.com/matzehuels/pegtower/pkg/observability"
	"github.com/matzehuels/pegtower/pkg/peg"
)

// RenderPDF renders snap as SVG and converts it with rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(snap peg.Snapshot, opts ...SVGOption) ([]byte, error) {
	start := time.Now()
	observability.Render().OnRenderStart(context.Background(), "pdf", 1)

	out, err := rsvgConvert(RenderSVG(snap, opts...), "pdf")

	observability.Render().OnRenderComplete(context.Background(), "pdf", len(out), time.Since(start), err)
	return out, err
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(svg []byte, format string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	cmd := exec.Command("rsvg-convert", "-f", format)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rsvg-convert: %s", errBuf.String())
	}
	return out.Bytes(), nil
}
