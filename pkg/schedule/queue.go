package schedule

import (
	"container/heap"
	"time"
)

// Scheduler runs functions at points in time measured from its start.
type Scheduler interface {
	// Now returns the time elapsed since the scheduler started.
	Now() time.Duration
	// At schedules fn to run at time t. Times in the past run as soon as possible.
	At(t time.Duration, fn func())
	// After schedules fn to run d after Now.
	After(d time.Duration, fn func())
}

type task struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// queue is a min-heap ordered by (at, seq).
type queue []*task

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(*task)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

func (q *queue) push(t *task) { heap.Push(q, t) }

func (q *queue) pop() *task { return heap.Pop(q).(*task) }

func (q queue) peek() *task { return q[0] }
