// Package timers owns tempo's background tasks: one-shot reminders and the
// elapsed-time ticker for running sessions.
package timers

import (
	"context"
	"errors"
	"sync"
)

// ErrRegistryClosed is returned when scheduling on a closed registry
var ErrRegistryClosed = errors.New("timer registry closed")

// Kind distinguishes the tasks a single todo may own
type Kind string

const (
	KindReminder Kind = "reminder"
	KindTicker   Kind = "ticker"
)

// Key identifies one task
type Key struct {
	TodoID int64
	Kind   Kind
}

// Task is the body of a timer goroutine. It must return once ctx is done.
type Task func(ctx context.Context)

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry runs keyed tasks and cancels them deterministically.
// At most one task runs per key.
type Registry struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	tasks  map[Key]*handle
	closed bool

	onChange func(kind Kind, active int)
}

// NewRegistry creates a registry whose tasks are children of parent.
// onChange, if non-nil, is called with the new per-kind count whenever a
// task starts or exits.
func NewRegistry(parent context.Context, onChange func(kind Kind, active int)) *Registry {
	ctx, cancel := context.WithCancel(parent)
	return &Registry{
		ctx:      ctx,
		cancel:   cancel,
		tasks:    make(map[Key]*handle),
		onChange: onChange,
	}
}

// Schedule starts task under key, first cancelling any task already
// running under it. Callers serialize Schedule calls for the same key.
func (r *Registry) Schedule(key Key, task Task) error {
	r.Cancel(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}

	ctx, cancel := context.WithCancel(r.ctx)
	h := &handle{cancel: cancel, done: make(chan struct{})}
	r.tasks[key] = h
	r.notifyLocked(key.Kind)

	go func() {
		defer close(h.done)
		defer cancel()
		task(ctx)

		r.mu.Lock()
		if r.tasks[key] == h {
			delete(r.tasks, key)
			r.notifyLocked(key.Kind)
		}
		r.mu.Unlock()
	}()
	return nil
}

// Cancel stops the task under key and waits for its goroutine to exit.
// It reports whether a task was running.
func (r *Registry) Cancel(key Key) bool {
	r.mu.Lock()
	h, ok := r.tasks[key]
	if ok {
		delete(r.tasks, key)
		r.notifyLocked(key.Kind)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	h.cancel()
	<-h.done
	return true
}

// CancelItem stops every task owned by one todo
func (r *Registry) CancelItem(id int64) {
	r.Cancel(Key{TodoID: id, Kind: KindReminder})
	r.Cancel(Key{TodoID: id, Kind: KindTicker})
}

// Active reports whether a task is running under key
func (r *Registry) Active(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[key]
	return ok
}

// Len returns the number of running tasks
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Close cancels every task and waits for all of them to exit.
// Later Schedule calls fail with ErrRegistryClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	handles := make([]*handle, 0, len(r.tasks))
	for key, h := range r.tasks {
		handles = append(handles, h)
		delete(r.tasks, key)
	}
	r.notifyLocked(KindReminder)
	r.notifyLocked(KindTicker)
	r.mu.Unlock()

	r.cancel()
	for _, h := range handles {
		<-h.done
	}
}

func (r *Registry) notifyLocked(kind Kind) {
	if r.onChange == nil {
		return
	}
	n := 0
	for key := range r.tasks {
		if key.Kind == kind {
			n++
		}
	}
	r.onChange(kind, n)
}
