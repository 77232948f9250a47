package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sluice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeTemp(t, `
server:
  addr: ":9090"
limits:
  - max_requests: 2
    window: 1s
  - max_requests: 3
    window: 2s
redis:
  addr: "localhost:6379"
  db: 1
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	require.Len(t, cfg.Limits, 2)
	assert.Equal(t, LimitConfig{MaxRequests: 2, Window: time.Second}, cfg.Limits[0])
	assert.Equal(t, LimitConfig{MaxRequests: 3, Window: 2 * time.Second}, cfg.Limits[1])
	require.NotNil(t, cfg.Redis)
	assert.Equal(t, 1, cfg.Redis.DB)
}

func TestLoadFile_DefaultsPreserved(t *testing.T) {
	path := writeTemp(t, `server: {addr: ":7070"}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, Default().Limits, cfg.Limits)
	assert.Nil(t, cfg.Redis)
}

func TestLoadFile_BadWindow(t *testing.T) {
	path := writeTemp(t, `
limits:
  - max_requests: 2
    window: "over the rainbow"
`)

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "limits[0].window")
}

func TestLoadFile_InvalidLimit(t *testing.T) {
	path := writeTemp(t, `
limits:
  - max_requests: 0
    window: 1s
`)

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "max_requests")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBuildLimits_FreshIdentities(t *testing.T) {
	cfg := Config{
		Limits: []LimitConfig{{MaxRequests: 2, Window: time.Second}},
	}

	first, err := cfg.BuildLimits()
	require.NoError(t, err)
	second, err := cfg.BuildLimits()
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotSame(t, first[0], second[0])
	assert.Equal(t, first[0].MaxRequests(), second[0].MaxRequests())
}

func TestWriteExample_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")
	require.NoError(t, WriteExample(path))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Limits, 2)
	assert.Equal(t, 2, cfg.Limits[0].MaxRequests)
}
