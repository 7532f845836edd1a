package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "statistical", cfg.Synthesizer)
	assert.Equal(t, "synthetic.csv", cfg.Output)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.S3Bucket)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Synthesizer = "empirical"
	cfg.Output = "out.json"
	cfg.S3Bucket = "artifacts"
	cfg.S3Prefix = "runs"

	written, err := SaveConfig(cfg, path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveConfigDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	written, err := SaveConfig(DefaultConfig(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tabsynth", "config.yaml"), written)

	_, err = os.Stat(written)
	require.NoError(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TABSYNTH_SYNTHESIZER", "empirical")
	t.Setenv("TABSYNTH_LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "empirical", cfg.Synthesizer)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
