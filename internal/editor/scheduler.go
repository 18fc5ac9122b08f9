package editor

// Scheduler defers change notifications to the host's next turn
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to Scheduler
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// Immediate runs notifications as soon as the mutation has completed
func Immediate() Scheduler {
	return SchedulerFunc(func(fn func()) { fn() })
}

// Queue holds notifications until the host drains it, for hosts that run
// their own event loop. Not safe for concurrent use.
type Queue struct {
	pending []func()
}

// Schedule enqueues fn
func (q *Queue) Schedule(fn func()) {
	q.pending = append(q.pending, fn)
}

// Len returns the number of queued notifications
func (q *Queue) Len() int { return len(q.pending) }

// Drain runs queued notifications in order, including any scheduled while
// draining, and returns how many ran.
func (q *Queue) Drain() int {
	ran := 0
	for len(q.pending) > 0 {
		fn := q.pending[0]
		q.pending = q.pending[1:]
		fn()
		ran++
	}
	return ran
}
