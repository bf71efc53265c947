package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dori/tempo/internal/config"
	"github.com/dori/tempo/internal/controller"
	"github.com/dori/tempo/internal/db"
	"github.com/dori/tempo/internal/logging"
	"github.com/dori/tempo/internal/metrics"
	"github.com/dori/tempo/internal/notify"
	"github.com/dori/tempo/internal/timers"
	"github.com/dori/tempo/internal/watch"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when another interactive instance holds
// the lock
var ErrAlreadyRunning = errors.New("another instance of tempo is already running")

// Mode selects which subsystems an App starts
type Mode int

const (
	// ModeCommand serves one-shot CLI commands: no lock, timers or watch
	ModeCommand Mode = iota
	// ModeInteractive serves the TUI
	ModeInteractive
)

// Option customizes an App
type Option func(*App)

// WithNotifier replaces the desktop notifier
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) {
		a.Notifier = n
	}
}

// WithLogger replaces the configured logger
func WithLogger(l *logging.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// App holds the application state and dependencies
type App struct {
	Config     *config.Config
	Logger     *logging.Logger
	Store      *db.Store
	Controller *controller.Controller
	Scheduler  *timers.Scheduler
	Notifier   notify.Notifier
	Metrics    *metrics.Metrics
	Watcher    *watch.Watcher

	mode     Mode
	ctx      context.Context
	cancel   context.CancelFunc
	lockFile *flock.Flock
}

// New creates a new application instance. The store opens in the
// background; operations issued before it is ready wait for it.
func New(cfg *config.Config, mode Mode, opts ...Option) (*App, error) {
	if cfg == nil {
		defaults := config.Defaults()
		cfg = &defaults
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:  cfg,
		Metrics: metrics.New(),
		mode:    mode,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.Logger == nil {
		logger, err := logging.New(cfg.Logging())
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		app.Logger = logger
	}
	if app.Notifier == nil {
		app.Notifier = notify.NewDesktop(cfg.Reminder.Notifications)
	}

	// Acquire lock to ensure single instance
	if mode == ModeInteractive {
		if err := app.acquireLock(); err != nil {
			cancel()
			return nil, err
		}
	}

	app.Store = db.OpenAsync(cfg.DB.Path, cfg.StoreOptions(app.Logger))

	ctrlOpts := []controller.Option{
		controller.WithLogger(app.Logger),
		controller.WithMetrics(app.Metrics),
	}
	if mode == ModeInteractive {
		app.Scheduler = timers.NewScheduler(ctx, app.Notifier, timers.Options{
			CheckInterval: cfg.Reminder.CheckInterval.Duration(),
			TickInterval:  cfg.Ticker.Interval.Duration(),
			Logger:        app.Logger,
			Metrics:       app.Metrics,
		})
		ctrlOpts = append(ctrlOpts, controller.WithListener(app.Scheduler))

		if cfg.Watch.Enabled {
			w, err := watch.New(cfg.DB.Path, cfg.Watch.Debounce.Duration(), app.Logger)
			if err != nil {
				app.Logger.Warn(ctx, "store watch disabled", zap.Error(err))
			} else {
				app.Watcher = w
			}
		}
	}
	app.Controller = controller.New(app.Store, ctrlOpts...)

	app.Logger.Info(ctx, "tempo started",
		zap.String("db", cfg.DB.Path),
		zap.Bool("interactive", mode == ModeInteractive),
		zap.Stringer("notifications", app.Notifier.Permission()),
	)
	return app, nil
}

// Start waits for the store, loads the mirror and starts the store watch
func (a *App) Start(ctx context.Context) error {
	if err := a.Store.Wait(ctx); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := a.Controller.Load(ctx); err != nil {
		return err
	}
	if a.Watcher != nil {
		if err := a.Watcher.Start(a.ctx); err != nil {
			a.Logger.Warn(ctx, "store watch disabled", zap.Error(err))
			a.Watcher.Stop()
			a.Watcher = nil
		}
	}
	return nil
}

// Context is cancelled when the App closes
func (a *App) Context() context.Context {
	return a.ctx
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Config.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return ErrAlreadyRunning
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	if a.Scheduler != nil {
		a.Scheduler.Close()
	}
	a.cancel()

	if err := a.Metrics.WriteTextfile(a.Config.Metrics.Textfile); err != nil {
		errs = append(errs, err)
	}

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.Logger != nil {
		a.Logger.Info(context.Background(), "tempo stopped")
		if err := a.Logger.Sync(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
