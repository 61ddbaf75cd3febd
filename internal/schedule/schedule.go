// Package schedule runs recurring callbacks from a render loop.
//
// Nothing here owns a goroutine or a timer. The host calls Tick once per
// frame and every due task runs inline, so callbacks never race with each
// other or with drawing. A Scheduler is not safe for concurrent use.
package schedule

import "time"

// maxCatchUp bounds how many missed intervals a task replays in one Tick
// after a stall before it resynchronises to the current time.
const maxCatchUp = 5

type Func func(now time.Time)

type Task struct {
	fn       Func
	interval time.Duration
	next     time.Time
	stopped  bool
}

// Stop cancels the task. Stopping twice is harmless, and a task stopped from
// inside a Tick does not run again in that Tick.
func (t *Task) Stop() {
	if t != nil {
		t.stopped = true
	}
}

func (t *Task) Running() bool {
	return t != nil && !t.stopped
}

type Scheduler struct {
	tasks  []*Task
	closed bool
}

func New() *Scheduler {
	return &Scheduler{}
}

// EveryFrame registers fn to run on every Tick.
func (s *Scheduler) EveryFrame(fn Func) *Task {
	return s.add(&Task{fn: fn})
}

// Every registers fn to run once per interval. The first run happens one
// interval after the next Tick.
func (s *Scheduler) Every(interval time.Duration, fn Func) *Task {
	if interval <= 0 {
		return s.EveryFrame(fn)
	}
	return s.add(&Task{fn: fn, interval: interval})
}

func (s *Scheduler) add(t *Task) *Task {
	if s.closed {
		t.stopped = true
		return t
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Tick runs everything that is due at now. Tasks added by a callback wait
// for the following Tick.
func (s *Scheduler) Tick(now time.Time) {
	tasks := s.tasks
	for _, t := range tasks {
		if t.stopped {
			continue
		}
		if t.interval == 0 {
			t.fn(now)
			continue
		}
		if t.next.IsZero() {
			t.next = now.Add(t.interval)
			continue
		}
		for runs := 0; runs < maxCatchUp && !t.stopped && !now.Before(t.next); runs++ {
			t.fn(now)
			t.next = t.next.Add(t.interval)
		}
		if !now.Before(t.next) {
			t.next = now.Add(t.interval)
		}
	}
	s.compact()
}

func (s *Scheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
}

// Len reports the number of running tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Close stops every task. Tasks registered afterwards never run.
func (s *Scheduler) Close() {
	for _, t := range s.tasks {
		t.stopped = true
	}
	s.tasks = nil
	s.closed = true
}
