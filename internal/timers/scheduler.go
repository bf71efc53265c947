package timers

import (
	"context"
	"sync"
	"time"

	"github.com/dori/tempo/internal/logging"
	"github.com/dori/tempo/internal/metrics"
	"github.com/dori/tempo/internal/model"
	"github.com/dori/tempo/internal/notify"
	"go.uber.org/zap"
)

// Defaults for Options
const (
	DefaultCheckInterval = 30 * time.Second
	DefaultTickInterval  = time.Second
	DefaultEventBuffer   = 64
)

// EventKind tells the UI what a timer produced
type EventKind int

const (
	EventReminderFired EventKind = iota
	EventElapsed
)

// Event is delivered on Scheduler.Events
type Event struct {
	Kind    EventKind
	TodoID  int64
	Title   string
	Elapsed model.Elapsed
	At      time.Time
}

// Options configures a Scheduler. Zero values fall back to the defaults.
type Options struct {
	CheckInterval time.Duration
	TickInterval  time.Duration
	EventBuffer   int
	Now           func() time.Time
	Logger        *logging.Logger
	Metrics       *metrics.Metrics
}

// Scheduler keeps one reminder task and one ticker task per tracked todo in
// sync with the todo's latest snapshot.
type Scheduler struct {
	reg      *Registry
	notifier notify.Notifier
	opts     Options
	events   chan Event

	// mu serializes Track and Untrack
	mu      sync.Mutex
	tracked map[int64]model.Todo

	// firedMu guards fired, which task goroutines write. It holds the
	// remindIn of each reminder that fired or was found stale.
	firedMu sync.Mutex
	fired   map[int64]time.Time
}

// NewScheduler creates a scheduler whose tasks live until ctx is done or
// Close is called.
func NewScheduler(ctx context.Context, notifier notify.Notifier, opts Options) *Scheduler {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	opts.Logger = opts.Logger.Named("timers")

	s := &Scheduler{
		notifier: notifier,
		opts:     opts,
		events:   make(chan Event, opts.EventBuffer),
		tracked:  make(map[int64]model.Todo),
		fired:    make(map[int64]time.Time),
	}
	s.reg = NewRegistry(ctx, func(kind Kind, n int) {
		opts.Metrics.SetActiveTimers(string(kind), n)
	})
	return s
}

// Events delivers reminder and elapsed-time events
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Track re-synchronizes the timers of one todo with its latest snapshot
func (s *Scheduler) Track(todo model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.tracked[todo.ID]
	s.syncReminder(prev, seen, todo)
	s.syncTicker(prev, seen, todo)
	s.tracked[todo.ID] = todo.Clone()
}

// Untrack cancels every timer of a todo. When it returns no task of that
// todo is running.
func (s *Scheduler) Untrack(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reg.CancelItem(id)
	delete(s.tracked, id)

	s.firedMu.Lock()
	delete(s.fired, id)
	s.firedMu.Unlock()
}

// Tracked reports whether a todo is tracked
func (s *Scheduler) Tracked(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tracked[id]
	return ok
}

// Active reports whether a task of the given kind runs for a todo
func (s *Scheduler) Active(id int64, kind Kind) bool {
	return s.reg.Active(Key{TodoID: id, Kind: kind})
}

// TodoChanged implements controller.Listener
func (s *Scheduler) TodoChanged(todo model.Todo) {
	s.Track(todo)
}

// TodoRemoved implements controller.Listener
func (s *Scheduler) TodoRemoved(id int64) {
	s.Untrack(id)
}

// Reloaded implements controller.Listener. Todos no longer present are
// untracked; the rest are re-synchronized.
func (s *Scheduler) Reloaded(todos []model.Todo) {
	present := make(map[int64]struct{}, len(todos))
	for _, t := range todos {
		present[t.ID] = struct{}{}
	}

	s.mu.Lock()
	var gone []int64
	for id := range s.tracked {
		if _, ok := present[id]; !ok {
			gone = append(gone, id)
		}
	}
	s.mu.Unlock()

	for _, id := range gone {
		s.Untrack(id)
	}
	for _, t := range todos {
		s.Track(t)
	}
}

// Close cancels all tasks and waits for them. Events is not closed so
// pending receivers simply stop getting values.
func (s *Scheduler) Close() {
	s.reg.Close()
}

func (s *Scheduler) syncReminder(prev model.Todo, seen bool, todo model.Todo) {
	key := Key{TodoID: todo.ID, Kind: KindReminder}
	log := s.opts.Logger.With(zap.Int64("todo_id", todo.ID))

	perm := s.notifier.Permission()
	want := Armable(todo, perm) && !s.alreadyFired(todo)
	changed := !seen || !sameInstant(prev.RemindIn, todo.RemindIn)

	if s.reg.Active(key) && (!want || changed) {
		s.reg.Cancel(key)
		log.Debug(context.Background(), "reminder cancelled")
	}
	if todo.RemindIn != nil && !todo.Status && perm != notify.PermissionGranted {
		log.Debug(context.Background(), "notification permission not granted, reminder not armed")
		return
	}
	if !want || s.reg.Active(key) {
		return
	}

	if err := s.reg.Schedule(key, s.reminderTask(todo)); err != nil {
		log.Warn(context.Background(), "failed to arm reminder", zap.Error(err))
		return
	}
	log.Debug(context.Background(), "reminder armed", zap.Time("remind_in", *todo.RemindIn))
}

func (s *Scheduler) syncTicker(prev model.Todo, seen bool, todo model.Todo) {
	key := Key{TodoID: todo.ID, Kind: KindTicker}

	want := todo.SessionRunning()
	changed := !seen || !sameInstant(prev.StartedAt, todo.StartedAt)

	if s.reg.Active(key) && (!want || changed) {
		s.reg.Cancel(key)
	}
	if !want || s.reg.Active(key) {
		return
	}

	id := todo.ID
	emit := func(ctx context.Context, e model.Elapsed) {
		ev := Event{Kind: EventElapsed, TodoID: id, Elapsed: e, At: s.opts.Now()}
		// A lagging consumer loses ticks; the next one supersedes them
		select {
		case s.events <- ev:
		case <-ctx.Done():
		default:
		}
	}
	if err := s.reg.Schedule(key, elapsedTask(*todo.StartedAt, s.opts.TickInterval, s.opts.Now, emit)); err != nil {
		s.opts.Logger.Warn(context.Background(), "failed to start ticker", zap.Int64("todo_id", id), zap.Error(err))
	}
}

func (s *Scheduler) reminderTask(todo model.Todo) Task {
	r := NewReminder(todo, notify.PermissionGranted)
	snapshot := todo.Clone()

	return func(ctx context.Context) {
		ticker := time.NewTicker(s.opts.CheckInterval)
		defer ticker.Stop()

		for {
			if r.Check(s.opts.Now()) {
				s.fire(ctx, snapshot)
				return
			}
			if r.State() != Armed {
				s.markDone(snapshot)
				s.opts.Logger.Debug(ctx, "stale reminder skipped", zap.Int64("todo_id", snapshot.ID))
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, todo model.Todo) {
	if ctx.Err() != nil {
		return
	}

	s.markDone(todo)

	if err := s.notifier.Notify(ctx, todo.Title, todo.Description); err != nil {
		s.opts.Logger.Warn(ctx, "reminder notification failed", zap.Int64("todo_id", todo.ID), zap.Error(err))
	} else {
		s.opts.Metrics.ReminderFired()
		s.opts.Logger.Info(ctx, "reminder fired", zap.Int64("todo_id", todo.ID))
	}

	select {
	case s.events <- Event{Kind: EventReminderFired, TodoID: todo.ID, Title: todo.Title, At: s.opts.Now()}:
	case <-ctx.Done():
	}
}

func (s *Scheduler) alreadyFired(todo model.Todo) bool {
	if todo.RemindIn == nil {
		return false
	}
	s.firedMu.Lock()
	defer s.firedMu.Unlock()
	at, ok := s.fired[todo.ID]
	return ok && at.Equal(*todo.RemindIn)
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// markDone records todo's remindIn so later syncs leave it disarmed
func (s *Scheduler) markDone(todo model.Todo) {
	s.firedMu.Lock()
	s.fired[todo.ID] = *todo.RemindIn
	s.firedMu.Unlock()
}
