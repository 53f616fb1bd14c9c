package applyq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned when posting to a closed queue.
var ErrClosed = errors.New("apply queue closed")

// Queue is a serial executor with an unbounded backlog.
type Queue struct {
	mu      sync.Mutex
	tasks   []func()
	closed  bool
	signal  chan struct{}
	stopped chan struct{}
	logger  *zap.Logger
}

// New starts a queue.
func New(logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queue{
		signal:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	go q.loop()
	return q
}

// Post schedules fn. It never blocks.
func (q *Queue) Post(fn func()) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

// Sync waits until every task posted before the call has run. It must not be
// called from a task.
func (q *Queue) Sync(ctx context.Context) error {
	done := make(chan struct{})
	if err := q.Post(func() { close(done) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close runs the remaining backlog and stops the goroutine.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.stopped
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	<-q.stopped
}

func (q *Queue) loop() {
	defer close(q.stopped)
	for {
		q.mu.Lock()
		tasks := q.tasks
		q.tasks = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range tasks {
			q.run(fn)
		}
		if len(tasks) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.signal
	}
}

func (q *Queue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Surface call panicked", zap.Error(fmt.Errorf("%v", r)))
		}
	}()
	fn()
}
