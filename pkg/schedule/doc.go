// Package schedule runs delayed tasks in timestamp order.
//
// A [Scheduler] accepts tasks for a point in time relative to its own start.
// Tasks with equal timestamps run in the order they were scheduled, and a task
// may schedule further tasks. Two implementations are provided:
//
//   - [Virtual] keeps a virtual clock that jumps straight to the next task.
//     Nothing ever sleeps, which makes whole animations deterministic and
//     instant in tests and in batch rendering.
//   - [Loop] runs tasks on wall-clock time from a single goroutine. Tasks never
//     run concurrently with each other, so the state they share needs no locks.
//
// Both share the same ordering rule, so a run replayed on a Virtual scheduler
// produces the same sequence of task executions as one played back on a Loop.
package schedule
