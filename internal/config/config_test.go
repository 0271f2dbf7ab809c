package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtdb-labs/xtdb/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.PageSize)
	assert.Equal(t, 4, cfg.CompactorFanIn)
	assert.Equal(t, "UTC", cfg.DefaultTimeZone.String())
	assert.False(t, cfg.SuppressTimeLiteralPrinters)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xtdb.yaml")
	contents := "storage:\n  page-size: 512\n  compactor-fan-in: 8\nquery:\n  default-time-zone: America/New_York\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.PageSize)
	assert.Equal(t, 8, cfg.CompactorFanIn)
	assert.Equal(t, "America/New_York", cfg.DefaultTimeZone.String())
}

func TestLoadRejectsInvalidPageSize(t *testing.T) {
	t.Setenv("XTDB_STORAGE_PAGE_SIZE", "0")
	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimeZone(t *testing.T) {
	t.Setenv("XTDB_QUERY_DEFAULT_TIME_ZONE", "Not/AZone")
	_, err := config.Load("")
	assert.Error(t, err)
}
