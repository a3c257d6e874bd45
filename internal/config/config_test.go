package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHome_EnvOverride(t *testing.T) {
	t.Setenv(EnvHome, "/srv/beetle")

	home, err := Home()

	require.NoError(t, err)
	assert.Equal(t, "/srv/beetle", home)
}

func TestHome_DefaultUnderUserHome(t *testing.T) {
	t.Setenv(EnvHome, "")
	t.Setenv("HOME", "/home/tester")

	home, err := Home()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".beetle"), home)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	home := t.TempDir()
	content := "writer:\n  batch_size: 25\nsearch:\n  top_k: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load(home)

	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Writer.BatchSize)
	assert.Equal(t, 3, cfg.Search.TopK)
	assert.Equal(t, Default().Server.Listen, cfg.Server.Listen)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceWindow())
}

func TestLoad_MalformedFileFails(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("writer: ["), 0o644))

	_, err := Load(home)

	assert.Error(t, err)
}

func TestLoad_NonsenseValuesClampedToDefaults(t *testing.T) {
	home := t.TempDir()
	content := "writer:\n  batch_size: -1\nwatch:\n  debounce: bogus\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load(home)

	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Writer.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceWindow())
}

func TestIndexRoot(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv/beetle", "index"), IndexRoot("/srv/beetle"))
}
