package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAnimationHooks{}
	a.OnIteration(ctx, 1, 0, 3, 2)
	a.OnMove(ctx, 0, 2, 1)
	a.OnComplete(ctx, 10, time.Second, nil)

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "svg", 1)
	r.OnRenderComplete(ctx, "svg", 1024, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Animation().(NoopAnimationHooks); !ok {
		t.Error("Animation() should return NoopAnimationHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}

	customAnimation := &testAnimationHooks{}
	SetAnimationHooks(customAnimation)
	if Animation() != customAnimation {
		t.Error("SetAnimationHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	Reset()
	if _, ok := Animation().(NoopAnimationHooks); !ok {
		t.Error("Reset() should restore NoopAnimationHooks")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testAnimationHooks{}
	SetAnimationHooks(custom)
	SetAnimationHooks(nil)
	if Animation() != custom {
		t.Error("SetAnimationHooks(nil) should keep the previous hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testAnimationHooks{}
	SetAnimationHooks(h)

	ctx := context.Background()
	Animation().OnIteration(ctx, 1, 0, 2, 1)
	Animation().OnMove(ctx, 0, 1, 1)
	Animation().OnMove(ctx, 0, 2, 2)
	Animation().OnComplete(ctx, 2, time.Second, nil)

	if h.iterations != 1 || h.moves != 2 || h.completed != 1 {
		t.Errorf("got iterations=%d moves=%d completed=%d, want 1, 2, 1", h.iterations, h.moves, h.completed)
	}
}

type testAnimationHooks struct {
	iterations, moves, completed int
}

func (h *testAnimationHooks) OnIteration(context.Context, int, int, int, int) { h.iterations++ }
func (h *testAnimationHooks) OnMove(context.Context, int, int, int)           { h.moves++ }
func (h *testAnimationHooks) OnComplete(context.Context, int, time.Duration, error) {
	h.completed++
}

type testRenderHooks struct{}

func (testRenderHooks) OnRenderStart(context.Context, string, int)                          {}
func (testRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}
