package svgcache

import (
	"errors"
	"runtime"
	"sync"
)

// ErrExecutorClosed is returned when running work on a closed executor.
var ErrExecutorClosed = errors.New("svgcache: executor closed")

// Executor runs work on a designated thread.
type Executor interface {
	// Run executes fn and waits for its completion.
	Run(fn func() error) error
}

type job struct {
	fn   func() error
	done chan error
}

// ThreadExecutor runs its work, in order, on a single
// goroutine locked to its OS thread.
type ThreadExecutor struct {
	jobs chan job

	mu     sync.RWMutex // guards closed
	closed bool
	exited chan struct{}
}

// NewThreadExecutor starts the worker thread. Close releases it.
func NewThreadExecutor() *ThreadExecutor {
	e := &ThreadExecutor{
		jobs:   make(chan job),
		exited: make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *ThreadExecutor) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.exited)
	for j := range e.jobs {
		j.done <- j.fn()
	}
}

// Run implements Executor.
func (e *ThreadExecutor) Run(fn func() error) error {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ErrExecutorClosed
	}
	j := job{fn: fn, done: make(chan error, 1)}
	e.jobs <- j
	e.mu.RUnlock()
	return <-j.done
}

// Close waits for the pending work and stops the worker thread.
// It is safe to call Close several times.
func (e *ThreadExecutor) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.jobs)
	}
	e.mu.Unlock()
	<-e.exited
}
