package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/pegtower/pkg/animate"
	"github.com/matzehuels/pegtower/pkg/errors"
	"github.com/matzehuels/pegtower/pkg/observability"
	"github.com/matzehuels/pegtower/pkg/peg"
)

type jsonFrame struct {
	Index     int           `json:"index"`
	AtMillis  int64         `json:"at_ms"`
	Iteration int           `json:"iteration"`
	Moves     int           `json:"moves"`
	Bounds    jsonRect      `json:"bounds"`
	Pegs      [][]jsonBlock `json:"pegs"`
}

type jsonRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type jsonBlock struct {
	ID     int `json:"id"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RenderJSON exports a frame as a pretty-printed JSON document. Pegs are listed
// bottom block first.
func RenderJSON(f animate.Frame) ([]byte, error) {
	start := time.Now()
	observability.Render().OnRenderStart(context.Background(), "json", 1)

	out := jsonFrame{
		Index:     f.Index,
		AtMillis:  f.At.Milliseconds(),
		Iteration: f.Iteration,
		Moves:     f.Snapshot.Moves,
		Bounds:    toJSONRect(f.Snapshot.Bounds),
		Pegs:      make([][]jsonBlock, peg.Count),
	}
	for i, p := range f.Snapshot.Pegs {
		out.Pegs[i] = make([]jsonBlock, 0, len(p))
		for _, b := range p {
			out.Pegs[i] = append(out.Pegs[i], jsonBlock{ID: b.ID, X: b.X, Y: b.Y, Width: b.Width, Height: b.Height})
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, err, "encode json")
	}

	observability.Render().OnRenderComplete(context.Background(), "json", len(data), time.Since(start), err)
	return data, err
}

func toJSONRect(r peg.Rect) jsonRect {
	return jsonRect{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}
