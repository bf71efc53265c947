// Package watch reports writes to the SQLite store made by other processes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dori/tempo/internal/logging"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// Change is emitted once per debounced burst of store writes
type Change struct {
	Path      string
	Timestamp time.Time
}

// Watcher watches the directory holding the database file
type Watcher struct {
	dir      string
	names    map[string]bool
	debounce time.Duration
	log      *logging.Logger

	watcher *fsnotify.Watcher
	changes chan Change
	stop    chan struct{}
}

// New creates a watcher for the database at dbPath. Writes to the file
// and its -wal and -journal companions are reported.
func New(dbPath string, debounce time.Duration, log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	base := filepath.Base(dbPath)
	return &Watcher{
		dir: filepath.Dir(dbPath),
		names: map[string]bool{
			base:              true,
			base + "-wal":     true,
			base + "-journal": true,
		},
		debounce: debounce,
		log:      log.Named("watch"),
		watcher:  fw,
		changes:  make(chan Change, 1),
		stop:     make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Call Stop to release
// the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	go w.run(ctx)
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		return
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
}

// Changes delivers debounced change notifications
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

func (w *Watcher) run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			change := Change{Path: pending, Timestamp: time.Now()}
			// A pending notification already covers this one
			select {
			case w.changes <- change:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.names[filepath.Base(event.Name)] {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
