package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sluice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: {addr: \":8080\"}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 4)
	w := NewWatcher(path, nil)
	w.debounce = 20 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(cfg Config) { reloaded <- cfg })
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`
server: {addr: ":8081"}
limits:
  - max_requests: 7
    window: 3s
`), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, ":8081", cfg.Server.Addr)
		require.Len(t, cfg.Limits, 1)
		assert.Equal(t, 7, cfg.Limits[0].MaxRequests)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_SkipsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sluice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: {addr: \":8080\"}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 4)
	w := NewWatcher(path, nil)
	w.debounce = 20 * time.Millisecond

	go func() { _ = w.Watch(ctx, func(cfg Config) { reloaded <- cfg }) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("limits: [{max_requests: 0, window: 1s}]"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(500 * time.Millisecond):
	}
}
