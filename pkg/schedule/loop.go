package schedule

import (
	"context"
	"sync"
	"time"
)

// Loop is a Scheduler that runs tasks on wall-clock time.
//
// At and After may be called from any goroutine, including from inside a
// task. Tasks themselves only ever run on the goroutine that called Run.
type Loop struct {
	mu    sync.Mutex
	start time.Time
	seq   uint64
	q     queue
	wake  chan struct{}
}

// NewLoop returns a Loop whose clock starts now.
func NewLoop() *Loop {
	return &Loop{
		start: time.Now(),
		wake:  make(chan struct{}, 1),
	}
}

// Now returns the wall-clock time elapsed since the loop was created.
func (l *Loop) Now() time.Duration { return time.Since(l.start) }

// At schedules fn at time t after the loop was created.
func (l *Loop) At(t time.Duration, fn func()) {
	l.mu.Lock()
	l.seq++
	l.q.push(&task{at: t, seq: l.seq, fn: fn})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After schedules fn d after Now.
func (l *Loop) After(d time.Duration, fn func()) {
	l.At(l.Now()+max(d, 0), fn)
}

// Len returns the number of pending tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.Len()
}

// Run executes tasks as they fall due until the queue is empty or ctx is
// done. Pending tasks are dropped when ctx ends; Run then returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		if l.q.Len() == 0 {
			l.mu.Unlock()
			return nil
		}
		wait := l.q.peek().at - l.Now()
		if wait <= 0 {
			t := l.q.pop()
			l.mu.Unlock()
			t.fn()
			continue
		}
		l.mu.Unlock()

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
		}
	}
}

var _ Scheduler = (*Loop)(nil)
