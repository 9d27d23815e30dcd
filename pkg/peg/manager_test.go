package peg

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pegtower/pkg/errors"
)

func newTestManager(t *testing.T, widths ...int) *Manager {
	t.Helper()
	opts := []Option{WithLogger(log.New(&bytes.Buffer{}))}
	if len(widths) > 0 {
		opts = append(opts, WithWidths(FixedWidths(widths...)))
	}
	m, err := NewManager(len(widths), opts...)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	return m
}

func mustMove(t *testing.T, m *Manager, src, dst int) {
	t.Helper()
	if err := m.MoveBlock(src, dst); err != nil {
		t.Fatalf("MoveBlock(%d, %d) error: %v", src, dst, err)
	}
}

func TestNewManagerWarnsOutOfRange(t *testing.T) {
	for _, n := range []int{-1, 11} {
		var warned error
		m, err := NewManager(n, WithWarn(func(err error) { warned = err }), WithRand(NewRand(1)))
		if err != nil {
			t.Fatalf("NewManager(%d) error: %v", n, err)
		}
		if !errors.Is(warned, errors.ErrCodeInvalidBlockCount) {
			t.Errorf("NewManager(%d) warning = %v, want INVALID_BLOCK_COUNT", n, warned)
		}
		if m.Count() != n {
			t.Errorf("Count() = %d, want %d", m.Count(), n)
		}
	}
}

func TestNewManagerWarningIsLogged(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewManager(12, WithLogger(log.New(&buf)), WithRand(NewRand(1))); err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Invalid amount of blocks")) {
		t.Errorf("expected warning in log output, got %q", buf.String())
	}
}

func TestNewManagerStrict(t *testing.T) {
	tests := []struct {
		count   int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{10, false},
		{11, true},
	}
	for _, tt := range tests {
		_, err := NewManager(tt.count, WithStrictCount(), WithRand(NewRand(1)))
		if (err != nil) != tt.wantErr {
			t.Errorf("NewManager(%d, strict) error = %v, wantErr %v", tt.count, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidBlockCount) {
			t.Errorf("error code = %v, want INVALID_BLOCK_COUNT", errors.GetCode(err))
		}
	}
}

func TestMoveBlockPreservesTotal(t *testing.T) {
	m := newTestManager(t, 85, 41, 9, 15)
	moves := [][2]int{{0, 1}, {0, 2}, {1, 2}, {0, 1}, {2, 0}}
	for _, mv := range moves {
		beforeSrc, beforeDst := m.Len(mv[0]), m.Len(mv[1])
		mustMove(t, m, mv[0], mv[1])
		if m.Len(mv[0]) != beforeSrc-1 || m.Len(mv[1]) != beforeDst+1 {
			t.Errorf("MoveBlock(%d, %d): lengths %d→%d, %d→%d", mv[0], mv[1],
				beforeSrc, m.Len(mv[0]), beforeDst, m.Len(mv[1]))
		}
		if m.Total() != 4 {
			t.Errorf("Total() = %d after MoveBlock(%d, %d), want 4", m.Total(), mv[0], mv[1])
		}
	}
	if m.Moves() != len(moves) {
		t.Errorf("Moves() = %d, want %d", m.Moves(), len(moves))
	}
}

func TestMoveBlockPosition(t *testing.T) {
	m := newTestManager(t, 9, 41, 41)

	mustMove(t, m, First, Second)
	top := m.Peg(Second)[0]
	if top.X != 130 || top.Y != 120 {
		t.Errorf("first moved block at (%d, %d), want (130, 120)", top.X, top.Y)
	}

	mustMove(t, m, First, Second)
	top = m.Peg(Second)[1]
	if top.X != 130 || top.Y != 110 {
		t.Errorf("second moved block at (%d, %d), want (130, 110)", top.X, top.Y)
	}

	mustMove(t, m, Second, Target)
	top = m.Peg(Target)[0]
	if top.X != 230 || top.Y != 120 {
		t.Errorf("delivered block at (%d, %d), want (230, 120)", top.X, top.Y)
	}
}

func TestMoveBlockErrors(t *testing.T) {
	m := newTestManager(t, 9)
	tests := []struct {
		name     string
		src, dst int
		code     errors.Code
	}{
		{"empty source", Second, Target, errors.ErrCodeEmptyPeg},
		{"negative peg", -1, Target, errors.ErrCodeInvalidPeg},
		{"peg out of range", First, 3, errors.ErrCodeInvalidPeg},
		{"same peg", First, First, errors.ErrCodeInvalidPeg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.MoveBlock(tt.src, tt.dst)
			if !errors.Is(err, tt.code) {
				t.Errorf("MoveBlock(%d, %d) error = %v, want %s", tt.src, tt.dst, err, tt.code)
			}
		})
	}
	if m.Moves() != 0 || m.Len(First) != 1 {
		t.Error("failed moves must not change state")
	}
}

func TestTowerHeight(t *testing.T) {
	m := newTestManager(t, 9, 15, 19, 25)
	check := func() {
		t.Helper()
		for p := range Count {
			if got, want := m.TowerHeight(p), m.Len(p)*(m.Geometry().BlockHeight+1); got != want {
				t.Errorf("TowerHeight(%d) = %d, want %d", p, got, want)
			}
		}
	}
	check()
	mustMove(t, m, First, Second)
	check()
	mustMove(t, m, First, Target)
	check()
	if got := m.TowerHeight(First); got != 20 {
		t.Errorf("TowerHeight(0) = %d, want 20", got)
	}
}

func TestIndexOfWidestBlock(t *testing.T) {
	tests := []struct {
		name   string
		widths []int
		want   int
	}{
		{"topmost of equal maxima wins", []int{9, 41, 41, 15}, 2},
		{"bottom is widest", []int{85, 41, 9}, 0},
		{"top is widest", []int{9, 15, 85}, 2},
		{"all equal picks top", []int{15, 15, 15}, 2},
		{"single block", []int{41}, 0},
		{"empty peg", nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, tt.widths...)
			if got := m.IndexOfWidestBlock(First); got != tt.want {
				t.Errorf("IndexOfWidestBlock() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWidestAcrossFirstTwoPegs(t *testing.T) {
	t.Run("tie favours peg 1", func(t *testing.T) {
		m := newTestManager(t, 9, 41, 41)
		mustMove(t, m, First, Second)
		got := m.WidestAcrossFirstTwoPegs()
		if want := (Selection{Peg: Second, Index: 0}); got != want {
			t.Errorf("WidestAcrossFirstTwoPegs() = %+v, want %+v", got, want)
		}
	})

	t.Run("strictly wider peg 0 wins", func(t *testing.T) {
		m := newTestManager(t, 51, 41)
		mustMove(t, m, First, Second)
		got := m.WidestAcrossFirstTwoPegs()
		if want := (Selection{Peg: First, Index: 0}); got != want {
			t.Errorf("WidestAcrossFirstTwoPegs() = %+v, want %+v", got, want)
		}
	})

	t.Run("empty peg 1 counts as zero", func(t *testing.T) {
		m := newTestManager(t, 9, 15)
		got := m.WidestAcrossFirstTwoPegs()
		if want := (Selection{Peg: First, Index: 1}); got != want {
			t.Errorf("WidestAcrossFirstTwoPegs() = %+v, want %+v", got, want)
		}
	})

	t.Run("both empty selects nothing", func(t *testing.T) {
		m := newTestManager(t)
		got := m.WidestAcrossFirstTwoPegs()
		if !got.Empty() || got.Peg != Second {
			t.Errorf("WidestAcrossFirstTwoPegs() = %+v, want empty selection on peg 1", got)
		}
	})
}

func TestPegReturnsCopy(t *testing.T) {
	m := newTestManager(t, 9, 15)
	p := m.Peg(First)
	p[0].Width = 99
	if m.Peg(First)[0].Width == 99 {
		t.Error("Peg() exposes internal storage")
	}
}
