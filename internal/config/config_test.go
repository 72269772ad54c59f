package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("SLSKD_URL", "http://slskd:5030/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://slskd:5030", cfg.SlskdURL)
	assert.Equal(t, "/downloads", cfg.SlskdDownloadPath)
	assert.Equal(t, 15*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.ResultLimit)
	assert.Equal(t, "8585", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "blacklist.txt"), cfg.BlacklistFile)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("SLSKD_URL", "http://localhost:5030")
	t.Setenv("SLSKD_DOWNLOAD_PATH", "/data/complete/")
	t.Setenv("CACHE_TTL_MINUTES", "5")
	t.Setenv("PUBLIC_URL", "https://tunarr.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/complete", cfg.SlskdDownloadPath)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "https://tunarr.example.com", cfg.PublicURL)
}

func TestLoadRequiresSlskdURL(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("SLSKD_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLSKD_URL")
}
