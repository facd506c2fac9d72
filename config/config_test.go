package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSchedulerConfigDefaults(t *testing.T) {
	cfg, err := LoadSchedulerConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, 50, cfg.BatchLimit)
	assert.Equal(t, 10, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.ReverseTimeout)
}

func TestLoadSchedulerConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `tick_interval: 5s
batch_limit: 200
max_attempts: 3
reverse_timeout: 2s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scheduler.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadSchedulerConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 200, cfg.BatchLimit)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.ReverseTimeout)
}

func TestLoadSchedulerConfigPartialOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scheduler.yaml"), []byte("max_attempts: 5\n"), 0o644))

	cfg, err := LoadSchedulerConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxAttempts)
	// Everything else keeps its default.
	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, 50, cfg.BatchLimit)
}

func TestSplitIDs(t *testing.T) {
	assert.Nil(t, splitIDs(""))
	assert.Equal(t, []string{"1", "2"}, splitIDs("1,2"))
	assert.Equal(t, []string{"1", "2"}, splitIDs(" 1 , 2 , "))
}
