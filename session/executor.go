package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mstoykov/k6-taskqueue-lib/taskqueue"

	"github.com/liuxd6825/iedriver/log"
)

// ErrExecutorClosed is returned by Run once the executor has been closed.
var ErrExecutorClosed = errors.New("session executor is closed")

// Executor runs the commands of one session strictly one at a time on a
// dedicated goroutine. Tasks are ordered through a task queue that holds a
// callback registered on the executor loop.
type Executor struct {
	mu    sync.Mutex
	queue []func() error

	wakeup    chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	tq     *taskqueue.TaskQueue
	logger *log.Logger
}

// NewExecutor starts an executor loop.
func NewExecutor(logger *log.Logger) *Executor {
	e := &Executor{
		wakeup:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	e.tq = taskqueue.New(e.RegisterCallback)
	go e.loop()
	return e
}

// RegisterCallback reserves a slot on the loop. The returned function must
// be called exactly once with the work to run there; later calls are ignored.
func (e *Executor) RegisterCallback() func(func() error) {
	var once sync.Once
	return func(f func() error) {
		once.Do(func() {
			e.mu.Lock()
			e.queue = append(e.queue, f)
			e.mu.Unlock()

			select {
			case e.wakeup <- struct{}{}:
			default:
			}
		})
	}
}

func (e *Executor) loop() {
	defer close(e.stopped)
	for {
		e.mu.Lock()
		queue := e.queue
		e.queue = nil
		e.mu.Unlock()

		for _, f := range queue {
			if err := f(); err != nil {
				e.logger.Errorf("Executor:loop", "task failed: %v", err)
			}
		}
		if len(queue) > 0 {
			continue
		}

		select {
		case <-e.wakeup:
		case <-e.done:
			return
		}
	}
}

// Run queues fn and waits for it to finish on the loop. A panic in fn is
// returned as an error.
func (e *Executor) Run(ctx context.Context, fn func() error) error {
	select {
	case <-e.done:
		return ErrExecutorClosed
	default:
	}

	result := make(chan error, 1)
	e.tq.Queue(func() error {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("command panicked: %v", r)
			}
		}()
		result <- fn()
		return nil
	})

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrExecutorClosed
	}
}

// Close stops the loop after the task in progress, if any, and waits for it
// to exit. Queued tasks that have not started are dropped.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		e.tq.Close()
		close(e.done)
	})
	<-e.stopped
}
