package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Source)
	assert.Equal(t, "A:T", cfg.SheetRange)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.IncludeUnassigned)
	assert.False(t, cfg.DayFirst)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "source: ./tasks.csv\ncache_ttl: 90s\nday_first: true\ninclude_unassigned: false\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "./tasks.csv", cfg.Source)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.DayFirst)
	assert.False(t, cfg.IncludeUnassigned)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: from-file.csv\n"), 0o600))
	t.Setenv("TASKSHEET_SOURCE", "from-env.csv")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.csv", cfg.Source)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKSHEET_CONFIG_DIR", dir)

	in := &Config{
		Source:            "https://docs.google.com/spreadsheets/d/abc/edit",
		SheetRange:        "A:K",
		CacheTTL:          2 * time.Minute,
		IncludeUnassigned: true,
		Addr:              ":9000",
	}
	require.NoError(t, Save(in))

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err := Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
