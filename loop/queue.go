// Package loop is a cooperative task queue drained by one coordinating
// goroutine. Producers on other goroutines hand work to it with Submit;
// code already running on the loop uses Schedule.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrClosed = errors.New("loop: queue is closed")

type Task = func() error

type Queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func New() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Schedule queues t to run after everything already queued. It is Submit
// under the name component.Executor expects.
func (q *Queue) Schedule(t Task) error {
	return q.Submit(t)
}

func (q *Queue) Submit(t Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *Queue) pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return t, true
}

// RunPending runs queued tasks in FIFO order, including tasks queued while
// draining, until the queue is empty. The first failing task stops the drain;
// tasks behind it stay queued.
func (q *Queue) RunPending() error {
	for {
		t, ok := q.pop()
		if !ok {
			return nil
		}
		if err := t(); err != nil {
			return fmt.Errorf("loop: task failed: %w", err)
		}
	}
}

// Run drains the queue every time work arrives. It returns nil once ctx is
// done or the queue is closed, and the task error if one fails.
func (q *Queue) Run(ctx context.Context) error {
	for {
		if err := q.RunPending(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return q.RunPending()
		case <-q.wake:
		}
	}
}

// Close stops accepting new tasks. Tasks already queued still run.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.done)
	})
}
