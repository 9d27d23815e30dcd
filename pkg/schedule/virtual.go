package schedule

import "time"

// Virtual is a Scheduler driven by a virtual clock.
//
// Run, RunUntil and Advance execute due tasks on the calling goroutine and
// move the clock to each task's timestamp before running it.
type Virtual struct {
	now time.Duration
	seq uint64
	q   queue
}

// NewVirtual returns a Virtual scheduler at time zero.
func NewVirtual() *Virtual {
	return &Virtual{}
}

// Now returns the current virtual time.
func (v *Virtual) Now() time.Duration { return v.now }

// At schedules fn at virtual time t. Past times are clamped to Now.
func (v *Virtual) At(t time.Duration, fn func()) {
	if t < v.now {
		t = v.now
	}
	v.seq++
	v.q.push(&task{at: t, seq: v.seq, fn: fn})
}

// After schedules fn d after Now.
func (v *Virtual) After(d time.Duration, fn func()) {
	v.At(v.now+max(d, 0), fn)
}

// Len returns the number of pending tasks.
func (v *Virtual) Len() int { return v.q.Len() }

// Step runs the earliest pending task. It reports false if none was pending.
func (v *Virtual) Step() bool {
	if v.q.Len() == 0 {
		return false
	}
	t := v.q.pop()
	v.now = t.at
	t.fn()
	return true
}

// Run executes tasks until the queue is empty and returns how many ran.
func (v *Virtual) Run() int {
	n := 0
	for v.Step() {
		n++
	}
	return n
}

// RunUntil executes every task due at or before t, then sets the clock to t
// if it has not passed it already. It returns how many tasks ran.
func (v *Virtual) RunUntil(t time.Duration) int {
	n := 0
	for v.q.Len() > 0 && v.q.peek().at <= t {
		v.Step()
		n++
	}
	if v.now < t {
		v.now = t
	}
	return n
}

// Advance runs RunUntil(Now()+d).
func (v *Virtual) Advance(d time.Duration) int {
	return v.RunUntil(v.now + d)
}

var _ Scheduler = (*Virtual)(nil)
