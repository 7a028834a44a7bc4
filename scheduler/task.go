// SPDX-License-Identifier: MIT

package scheduler

import (
	"errors"
	"fmt"
	"sync"
)

// ErrTaskPanic wraps a panic recovered from a task body.
var ErrTaskPanic = errors.New("scheduler: task body panicked")

// Body is the work each registered goroutine executes once.
type Body interface {
	Run() error
}

// BodyFunc adapts a function to Body.
type BodyFunc func() error

// Run calls f.
func (f BodyFunc) Run() error { return f() }

// Finalizer is implemented by bodies that need a hook after the last
// goroutine deregisters. It runs only when no error was recorded.
type Finalizer interface {
	Finalize() error
}

// Terminator is implemented by bodies that can ask their parent task not to
// run once they complete.
type Terminator interface {
	Terminate() bool
}

// Task is a unit of schedulable work with dependency children.
type Task struct {
	mu         sync.Mutex
	body       Body
	children   []*Task
	maxThreads int

	registered int
	finished   int
	err        error

	done       chan struct{}
	doneClosed bool
	failed     chan struct{}
}

// NewTask returns a task that at most maxThreads goroutines run at once.
// maxThreads below 1 is treated as 1.
func NewTask(body Body, maxThreads int, children ...*Task) *Task {
	if maxThreads < 1 {
		maxThreads = 1
	}
	return &Task{
		body:       body,
		children:   children,
		maxThreads: maxThreads,
		done:       make(chan struct{}),
		failed:     make(chan struct{}),
	}
}

// AddChild appends a dependency that must complete before t starts.
func (t *Task) AddChild(child *Task) { t.children = append(t.children, child) }

// Children returns the dependency list in scheduling order.
func (t *Task) Children() []*Task { return t.children }

// MaxThreads is the registration cap.
func (t *Task) MaxThreads() int { return t.maxThreads }

// Body returns the wrapped body.
func (t *Task) Body() Body { return t.body }

// RegisterThread claims a slot for the calling goroutine. It fails once the
// task has an error, any goroutine has finished, or the cap is reached.
func (t *Task) RegisterThread() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil && t.finished == 0 && t.registered < t.maxThreads {
		t.registered++
		return true
	}
	return false
}

// DeregisterThreadAndFinalize releases the caller's slot. The last goroutine
// out runs the Finalizer (if any and no error is stored) and closes Done.
func (t *Task) DeregisterThreadAndFinalize() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished++
	if !t.completedLocked() {
		return
	}
	if t.err == nil {
		if f, ok := t.body.(Finalizer); ok {
			if err := f.Finalize(); err != nil {
				t.setErrorLocked(err)
			}
		}
	}
	if !t.doneClosed {
		t.doneClosed = true
		close(t.done)
	}
}

func (t *Task) completedLocked() bool {
	return t.registered > 0 && t.finished == t.registered
}

// IsCompleted reports whether every registered goroutine has deregistered.
func (t *Task) IsCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completedLocked()
}

// IsCompletedSuccessfully is IsCompleted without a stored error.
func (t *Task) IsCompletedSuccessfully() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completedLocked() && t.err == nil
}

// SetError records err unless an error is already stored.
func (t *Task) SetError(err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	t.setErrorLocked(err)
	t.mu.Unlock()
}

func (t *Task) setErrorLocked(err error) {
	if t.err != nil {
		return
	}
	t.err = err
	close(t.failed)
}

// HasError reports whether an error is stored.
func (t *Task) HasError() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err != nil
}

// Err returns the stored error, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Terminate asks the body whether dependents should be skipped.
func (t *Task) Terminate() bool {
	if term, ok := t.body.(Terminator); ok {
		return term.Terminate()
	}
	return false
}

// Done is closed when the task completes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Failed is closed when the first error is stored.
func (t *Task) Failed() <-chan struct{} { return t.failed }

// Registrations returns how many goroutines registered and finished so far.
func (t *Task) Registrations() (registered, finished int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registered, t.finished
}

// runTask executes the body on the calling goroutine, which must already be
// registered, stores any error and deregisters.
func runTask(t *Task) {
	if err := runBody(t.body); err != nil {
		t.SetError(err)
	}
	t.DeregisterThreadAndFinalize()
}

func runBody(body Body) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return body.Run()
}
