// Package observability provides hooks for tracing animation runs.
//
// Libraries call the registered hooks; the CLI decides what, if anything,
// listens. This keeps peg, animate and sink free of any particular logging or
// metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnimationHooks(&myAnimationHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Animation().OnIteration(ctx, n, pegIdx, blockIdx, shuttles)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Animation Hooks
// =============================================================================

// AnimationHooks receives events from the heuristic animator.
type AnimationHooks interface {
	// OnIteration is called when an iteration has chosen its block.
	// blockIdx is -1 when pegs 0 and 1 are both empty.
	OnIteration(ctx context.Context, iteration, pegIdx, blockIdx, shuttles int)

	// OnMove is called after every successful single-block move.
	OnMove(ctx context.Context, src, dst, moves int)

	// OnComplete is called once the final report fires.
	OnComplete(ctx context.Context, moves int, elapsed time.Duration, err error)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from frame encoders.
type RenderHooks interface {
	// OnRenderStart records the start of an encode.
	OnRenderStart(ctx context.Context, format string, frames int)

	// OnRenderComplete records the end of an encode.
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAnimationHooks is a no-op implementation of AnimationHooks.
type NoopAnimationHooks struct{}

func (NoopAnimationHooks) OnIteration(context.Context, int, int, int, int)       {}
func (NoopAnimationHooks) OnMove(context.Context, int, int, int)                 {}
func (NoopAnimationHooks) OnComplete(context.Context, int, time.Duration, error) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, int)                          {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	animationHooks AnimationHooks = NoopAnimationHooks{}
	renderHooks    RenderHooks    = NoopRenderHooks{}
	hooksMu        sync.RWMutex
)

// SetAnimationHooks registers custom animation hooks.
// This should be called once at application startup before any run starts.
func SetAnimationHooks(h AnimationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		animationHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// Animation returns the registered animation hooks.
func Animation() AnimationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return animationHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	animationHooks = NoopAnimationHooks{}
	renderHooks = NoopRenderHooks{}
}
