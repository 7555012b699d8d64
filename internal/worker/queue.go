// README: Background task queue; callers submit work and never wait for it.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"placemap/internal/metrics"
)

// ErrQueueFull is reported to the logger (never to the submitter) when a task is dropped.
var ErrQueueFull = errors.New("background queue full")

// Task is a unit of detached work. The context it receives is not tied to any request.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Submitter is what request-path code depends on.
type Submitter interface {
	Submit(t Task)
}

type Options struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// Queue hands submitted tasks from a buffered channel to goroutines; at most
// Workers tasks run at once, enforced by a weighted semaphore.
type Queue struct {
	tasks   chan Task
	sem     *semaphore.Weighted
	workers int
	timeout time.Duration
	logger  *zap.Logger

	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

func NewQueue(opts Options, logger *zap.Logger) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		tasks:   make(chan Task, opts.QueueSize),
		sem:     semaphore.NewWeighted(int64(opts.Workers)),
		workers: opts.Workers,
		timeout: opts.TaskTimeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the dispatcher. It exits once Close has been called, the
// buffer is drained and every running task has finished.
func (q *Queue) Start() {
	go q.dispatch()
}

// Submit enqueues t without blocking. A full or closed queue drops the task.
func (q *Queue) Submit(t Task) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.drop(t, errors.New("background queue closed"))
		return
	}
	select {
	case q.tasks <- t:
	default:
		q.drop(t, ErrQueueFull)
	}
}

// Close stops accepting tasks and waits for queued and in-flight ones, or until ctx ends.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) dispatch() {
	defer close(q.done)
	ctx := context.Background()
	for t := range q.tasks {
		if err := q.sem.Acquire(ctx, 1); err != nil {
			q.drop(t, err)
			continue
		}
		go func(t Task) {
			defer q.sem.Release(1)
			q.run(t)
		}(t)
	}
	// wait for in-flight tasks
	if err := q.sem.Acquire(ctx, int64(q.workers)); err == nil {
		q.sem.Release(int64(q.workers))
	}
}

func (q *Queue) run(t Task) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			metrics.BackgroundTasks.WithLabelValues("failed").Inc()
			q.logger.Error("background task panicked", zap.String("task", t.Name), zap.Any("panic", r))
		}
	}()

	if err := t.Run(ctx); err != nil {
		metrics.BackgroundTasks.WithLabelValues("failed").Inc()
		q.logger.Warn("background task failed", zap.String("task", t.Name), zap.Error(err))
		return
	}
	metrics.BackgroundTasks.WithLabelValues("ok").Inc()
}

func (q *Queue) drop(t Task, reason error) {
	metrics.BackgroundTasks.WithLabelValues("dropped").Inc()
	q.logger.Warn("background task dropped", zap.String("task", t.Name), zap.Error(reason))
}

// Inline runs tasks synchronously on the caller's goroutine. Tests use it to
// observe background effects deterministically.
type Inline struct {
	Logger *zap.Logger
}

func (i Inline) Submit(t Task) {
	if err := t.Run(context.Background()); err != nil && i.Logger != nil {
		i.Logger.Warn("background task failed", zap.String("task", t.Name), zap.Error(err))
	}
}
