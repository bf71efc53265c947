package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dori/tempo/internal/config"
	"github.com/dori/tempo/internal/logging"
	"github.com/dori/tempo/internal/model"
	"github.com/dori/tempo/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.DataDir = dir
	cfg.DB.Path = filepath.Join(dir, "tempo.db")
	cfg.Log.File = filepath.Join(dir, "tempo.log")
	cfg.Metrics.Textfile = filepath.Join(dir, "metrics", "tempo.prom")
	cfg.Reminder.Notifications = false
	return &cfg
}

func TestCommandModeRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := New(cfg, ModeCommand, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	assert.Nil(t, a.Scheduler)
	assert.Nil(t, a.Watcher)
	require.NoError(t, a.Start(ctx))

	created, err := a.Controller.Create(ctx, model.Draft{Title: "A", Description: "d"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(cfg, ModeCommand, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Start(ctx))

	got, ok := b.Controller.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func TestCloseWritesMetrics(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg, ModeCommand, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, a.Close())

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "tempo_operations_total"))
}

func TestInteractiveModeHoldsLock(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watch.Enabled = false

	a, err := New(cfg, ModeInteractive, WithLogger(logging.NewNop()), WithNotifier(notify.NewRecorder(true)))
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Scheduler)

	_, err = New(cfg, ModeInteractive, WithLogger(logging.NewNop()))
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	// Command mode skips the lock
	c, err := New(cfg, ModeCommand, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestInteractiveSessionStartsTicker(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watch.Enabled = false
	ctx := context.Background()

	a, err := New(cfg, ModeInteractive, WithLogger(logging.NewNop()), WithNotifier(notify.NewRecorder(true)))
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Start(ctx))

	todo, err := a.Controller.Create(ctx, model.Draft{Title: "A", Description: "d"})
	require.NoError(t, err)
	_, err = a.Controller.StartSession(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, a.Scheduler.Active(todo.ID, "ticker"))

	require.NoError(t, a.Controller.Delete(ctx, todo.ID))
	assert.False(t, a.Scheduler.Active(todo.ID, "ticker"))
}

func TestStartFailsOnBadDatabase(t *testing.T) {
	cfg := testConfig(t)
	// A directory where the database file should be
	require.NoError(t, os.MkdirAll(cfg.DB.Path, 0755))

	a, err := New(cfg, ModeCommand, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer a.Close()

	assert.Error(t, a.Start(context.Background()))
}
