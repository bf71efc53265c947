// Package config provides configuration loading for tempo.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dori/tempo/internal/db"
	"github.com/dori/tempo/internal/logging"
	"github.com/dori/tempo/internal/ui/theme"
)

// Config is the full tempo configuration
type Config struct {
	DataDir  string         `koanf:"data_dir"`
	DB       DBConfig       `koanf:"db"`
	Reminder ReminderConfig `koanf:"reminder"`
	Ticker   TickerConfig   `koanf:"ticker"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Watch    WatchConfig    `koanf:"watch"`
	UI       UIConfig       `koanf:"ui"`
}

// DBConfig configures the SQLite store
type DBConfig struct {
	Path        string   `koanf:"path"`
	BusyTimeout Duration `koanf:"busy_timeout"`
}

// ReminderConfig configures the reminder scheduler
type ReminderConfig struct {
	CheckInterval Duration `koanf:"check_interval"`
	Notifications bool     `koanf:"notifications"`
}

// TickerConfig configures the elapsed-time ticker
type TickerConfig struct {
	Interval Duration `koanf:"interval"`
}

// LogConfig configures logging. File "stderr" logs to standard error.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// MetricsConfig configures the textfile dump. An empty path disables it.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// WatchConfig configures reloading on external store writes
type WatchConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Debounce Duration `koanf:"debounce"`
}

// UIConfig configures the terminal interface
type UIConfig struct {
	Theme string `koanf:"theme"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		DataDir: db.DefaultDataDir(),
		DB: DBConfig{
			BusyTimeout: Duration(5 * time.Second),
		},
		Reminder: ReminderConfig{
			CheckInterval: Duration(30 * time.Second),
			Notifications: true,
		},
		Ticker: TickerConfig{
			Interval: Duration(time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: Duration(250 * time.Millisecond),
		},
		UI: UIConfig{
			Theme: theme.DefaultName,
		},
	}
}

// applyDefaults fills paths derived from the data directory
func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = db.DefaultDataDir()
	}
	if cfg.DB.Path == "" {
		cfg.DB.Path = filepath.Join(cfg.DataDir, "tempo.db")
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, "tempo.log")
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	var errs []error

	if c.Reminder.CheckInterval <= 0 {
		errs = append(errs, errors.New("reminder.check_interval must be positive"))
	} else if c.Reminder.CheckInterval.Duration() > time.Minute {
		// Any longer and a whole minute bucket can be skipped
		errs = append(errs, fmt.Errorf("reminder.check_interval must be at most 1m, got %s", c.Reminder.CheckInterval.Duration()))
	}
	if c.Ticker.Interval <= 0 {
		errs = append(errs, errors.New("ticker.interval must be positive"))
	}
	if c.Watch.Enabled && c.Watch.Debounce <= 0 {
		errs = append(errs, errors.New("watch.debounce must be positive"))
	}
	if err := c.Logging().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if _, ok := theme.ByName(c.UI.Theme); !ok {
		errs = append(errs, fmt.Errorf("ui.theme: unknown theme %q", c.UI.Theme))
	}

	return errors.Join(errs...)
}

// Logging converts the log section for logging.New
func (c *Config) Logging() logging.Config {
	file := c.Log.File
	if file == "stderr" {
		file = ""
	}
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format, File: file}
}

// StoreOptions converts the db section for db.Open
func (c *Config) StoreOptions(log *logging.Logger) db.Options {
	return db.Options{BusyTimeout: c.DB.BusyTimeout.Duration(), Logger: log}
}

// LockPath returns the single-instance lock file path
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "tempo.lock")
}
