package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dori/tempo/internal/logging"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrStorageUnavailable is returned while the store is not initialized,
// failed to initialize, or has been closed
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrNotFound is returned when no record has the requested id
var ErrNotFound = errors.New("todo not found")

// gooseMu guards goose's package-level configuration
var gooseMu sync.Mutex

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// Options tunes how the database file is opened
type Options struct {
	BusyTimeout time.Duration
	Logger      *logging.Logger
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tempo"
	}
	return filepath.Join(home, ".local", "share", "tempo")
}

// openDB opens a database connection and runs migrations
func openDB(dbPath string, opts Options) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	// WAL lets the CLI write while the TUI holds the database open
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=ON", dbPath, busy.Milliseconds())
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports one writer
	sqlDB.SetMaxIdleConns(1)

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB}

	// Run migrations
	if err := db.migrate(opts.Logger); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// migrate runs database migrations using embedded SQL files
func (db *DB) migrate(log *logging.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if log == nil {
		log = logging.NewNop()
	}
	goose.SetLogger(log.Named("goose"))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Store is the persistence gateway for the todos collection.
// Initialization may run in the background; calls made before it completes
// wait for it instead of failing.
type Store struct {
	ready chan struct{}
	db    *DB
	err   error

	mu     sync.RWMutex
	closed bool
}

// Open opens the store synchronously
func Open(dbPath string, opts Options) (*Store, error) {
	s := OpenAsync(dbPath, opts)
	<-s.ready
	if s.err != nil {
		return nil, s.err
	}
	return s, nil
}

// OpenAsync starts opening the store in the background and returns at once
func OpenAsync(dbPath string, opts Options) *Store {
	s := &Store{ready: make(chan struct{})}
	go func() {
		defer close(s.ready)
		s.db, s.err = openDB(dbPath, opts)
	}()
	return s
}

// Wait blocks until initialization has finished and reports its outcome
func (s *Store) Wait(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

// conn returns the open database, deferring until initialization is done
func (s *Store) conn(ctx context.Context) (*DB, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, ctx.Err())
	}

	if s.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, s.err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("%w: store closed", ErrStorageUnavailable)
	}
	return s.db, nil
}

// Close waits for initialization and closes the database connection
func (s *Store) Close() error {
	<-s.ready

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.db == nil {
		s.closed = true
		return nil
	}
	s.closed = true
	return s.db.Close()
}
