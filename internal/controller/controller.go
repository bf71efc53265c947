// Package controller keeps the in-memory mirror of todos consistent with
// the persistent store.
//
// Every mutating operation persists first and touches the mirror only
// after the store reports success, so a failed operation leaves the mirror
// exactly as it was. The mirror is always in chronological order.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dori/tempo/internal/db"
	"github.com/dori/tempo/internal/derive"
	"github.com/dori/tempo/internal/export"
	"github.com/dori/tempo/internal/logging"
	"github.com/dori/tempo/internal/metrics"
	"github.com/dori/tempo/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoActiveSession is returned by EndSession when no session is running
var ErrNoActiveSession = errors.New("no active session")

// Gateway is the persistent store as seen by the controller
type Gateway interface {
	Add(ctx context.Context, todo model.Todo) (int64, error)
	GetByID(ctx context.Context, id int64) (model.Todo, error)
	GetAll(ctx context.Context) ([]model.Todo, error)
	Update(ctx context.Context, todo model.Todo) error
	DeleteByID(ctx context.Context, id int64) error
}

// Listener is told about every successful mirror mutation. Calls are made
// in operation order and must not call back into the controller.
type Listener interface {
	TodoChanged(todo model.Todo)
	TodoRemoved(id int64)
	Reloaded(todos []model.Todo)
}

// Option configures a Controller
type Option func(*Controller)

// WithListener registers a listener
func WithListener(l Listener) Option {
	return func(c *Controller) {
		c.listeners = append(c.listeners, l)
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithMetrics records operation metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// Controller owns the mirror
type Controller struct {
	gw        Gateway
	listeners []Listener
	now       func() time.Time
	log       *logging.Logger
	metrics   *metrics.Metrics

	mu     sync.Mutex
	mirror []model.Todo

	loads singleflight.Group
}

// New creates a controller with an empty mirror. Call Load to populate it.
func New(gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:     gw,
		now:    time.Now,
		log:    logging.NewNop(),
		mirror: []model.Todo{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("controller")
	return c
}

// Load replaces the mirror with the store's contents. Concurrent calls
// share one store read.
func (c *Controller) Load(ctx context.Context) error {
	_, err, _ := c.loads.Do("load", func() (interface{}, error) {
		return nil, c.run(ctx, "load", 0, func(ctx context.Context) error {
			todos, err := c.gw.GetAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to load todos: %w", err)
			}
			c.mirror = derive.SortChronological(todos)
			snapshot := c.snapshotLocked()
			for _, l := range c.listeners {
				l.Reloaded(snapshot)
			}
			return nil
		})
	})
	return err
}

// Create validates and persists a new todo, then appends it to the mirror
func (c *Controller) Create(ctx context.Context, draft model.Draft) (model.Todo, error) {
	var created model.Todo
	err := c.run(ctx, "create", 0, func(ctx context.Context) error {
		draft = draft.Normalize()
		if err := draft.Validate(); err != nil {
			return err
		}

		now := c.stamp()
		todo := model.Todo{
			Title:       draft.Title,
			Description: draft.Description,
			RemindIn:    draft.RemindIn,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		id, err := c.gw.Add(ctx, todo)
		if err != nil {
			return fmt.Errorf("failed to create todo: %w", err)
		}
		todo.ID = id

		c.mirror = append(c.mirror, todo)
		c.sortLocked()
		created = todo.Clone()
		c.changedLocked(todo)
		return nil
	})
	return created, err
}

// Edit applies draft to an existing todo and marks it incomplete
func (c *Controller) Edit(ctx context.Context, id int64, draft model.Draft) (model.Todo, error) {
	draft = draft.Normalize()
	return c.mutate(ctx, "edit", id, draft.Validate, func(t *model.Todo) error {
		t.Title = draft.Title
		t.Description = draft.Description
		t.RemindIn = draft.RemindIn
		t.Status = false
		t.UpdatedAt = c.stamp()
		return nil
	})
}

// ToggleStatus flips a todo between complete and incomplete
func (c *Controller) ToggleStatus(ctx context.Context, id int64) (model.Todo, error) {
	return c.mutate(ctx, "toggle", id, nil, func(t *model.Todo) error {
		t.Status = !t.Status
		t.UpdatedAt = c.stamp()
		return nil
	})
}

// StartSession begins a work session, discarding any previous one
func (c *Controller) StartSession(ctx context.Context, id int64) (model.Todo, error) {
	return c.mutate(ctx, "start_session", id, nil, func(t *model.Todo) error {
		now := c.stamp()
		t.InProgress = true
		t.StartedAt = &now
		t.EndedAt = nil
		return nil
	})
}

// EndSession stops the running session
func (c *Controller) EndSession(ctx context.Context, id int64) (model.Todo, error) {
	return c.mutate(ctx, "end_session", id, nil, func(t *model.Todo) error {
		if !t.SessionRunning() {
			return fmt.Errorf("todo %d: %w", t.ID, ErrNoActiveSession)
		}
		now := c.stamp()
		if now.Before(*t.StartedAt) {
			now = *t.StartedAt
		}
		t.InProgress = false
		t.EndedAt = &now
		t.UpdatedAt = now
		return nil
	})
}

// Delete removes a todo. Deleting an unknown id succeeds.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	return c.run(ctx, "delete", id, func(ctx context.Context) error {
		if err := c.gw.DeleteByID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete todo %d: %w", id, err)
		}
		if i := c.indexLocked(id); i >= 0 {
			c.mirror = append(c.mirror[:i], c.mirror[i+1:]...)
		}
		for _, l := range c.listeners {
			l.TodoRemoved(id)
		}
		return nil
	})
}

// Export writes the mirror as a JSON array
func (c *Controller) Export(w io.Writer) error {
	return export.Write(w, c.Todos())
}

// Todos returns a copy of the mirror
func (c *Controller) Todos() []model.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Get returns the mirrored todo with the given id
func (c *Controller) Get(id int64) (model.Todo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.mirror[i].Clone(), true
	}
	return model.Todo{}, false
}

// mutate reads the stored todo, applies fn and writes it back.
// check, if set, runs before the store is touched.
func (c *Controller) mutate(ctx context.Context, op string, id int64, check func() error, fn func(*model.Todo) error) (model.Todo, error) {
	var updated model.Todo
	err := c.run(ctx, op, id, func(ctx context.Context) error {
		if check != nil {
			if err := check(); err != nil {
				return err
			}
		}
		todo, err := c.gw.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read todo %d: %w", id, err)
		}
		if err := fn(&todo); err != nil {
			return err
		}
		if err := c.gw.Update(ctx, todo); err != nil {
			return fmt.Errorf("failed to update todo %d: %w", id, err)
		}

		if i := c.indexLocked(id); i >= 0 {
			c.mirror[i] = todo
		} else {
			c.mirror = append(c.mirror, todo)
		}
		c.sortLocked()
		updated = todo.Clone()
		c.changedLocked(todo)
		return nil
	})
	return updated, err
}

// run serializes fn with every other operation and records its outcome
func (c *Controller) run(ctx context.Context, op string, id int64, fn func(ctx context.Context) error) error {
	ctx = logging.WithOperation(ctx, op)
	start := c.now()

	c.mu.Lock()
	err := fn(ctx)
	size := len(c.mirror)
	c.mu.Unlock()

	c.metrics.ObserveOperation(op, start, err)
	c.metrics.SetMirrorSize(size)

	fields := []zap.Field{}
	if id != 0 {
		fields = append(fields, zap.Int64("todo_id", id))
	}
	switch {
	case err == nil:
		c.log.Debug(ctx, "operation completed", fields...)
	case errors.Is(err, db.ErrNotFound):
		c.log.Warn(ctx, "todo not found", append(fields, zap.Error(err))...)
	case errors.Is(err, db.ErrStorageUnavailable):
		c.log.Error(ctx, "storage unavailable", append(fields, zap.Error(err))...)
	case errors.Is(err, model.ErrValidation), errors.Is(err, ErrNoActiveSession):
		c.log.Debug(ctx, "operation rejected", append(fields, zap.Error(err))...)
	default:
		c.log.Error(ctx, "operation failed", append(fields, zap.Error(err))...)
	}
	return err
}

func (c *Controller) stamp() time.Time {
	return model.Timestamp(c.now())
}

func (c *Controller) indexLocked(id int64) int {
	for i := range c.mirror {
		if c.mirror[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) sortLocked() {
	sort.SliceStable(c.mirror, func(i, j int) bool {
		return c.mirror[i].UpdatedAt.Before(c.mirror[j].UpdatedAt)
	})
}

func (c *Controller) changedLocked(todo model.Todo) {
	for _, l := range c.listeners {
		l.TodoChanged(todo.Clone())
	}
}

func (c *Controller) snapshotLocked() []model.Todo {
	out := make([]model.Todo, len(c.mirror))
	for i, t := range c.mirror {
		out[i] = t.Clone()
	}
	return out
}
