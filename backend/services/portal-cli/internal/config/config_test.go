package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Zero(t, cfg.Server.Retries)
	assert.Equal(t, []string{"All", "Pending", "Approved", "Rejected"}, cfg.Filter.Tabs)
	assert.Equal(t, "All", cfg.Filter.Active)
	assert.Equal(t, "session.yaml", filepath.Base(cfg.Session.File))
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  baseUrl: https://docs.example.com/
  retries: 2
filter:
  tabs: [Drafts, Published]
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORTAL_HTTP_TIMEOUT", "3s")
	t.Setenv("PORTAL_SESSION_FILE", filepath.Join(dir, "s.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com", cfg.Server.BaseURL)
	assert.Equal(t, uint64(2), cfg.Server.Retries)
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout)
	assert.Equal(t, []string{"Drafts", "Published"}, cfg.Filter.Tabs)
	assert.Equal(t, "Drafts", cfg.Filter.Active)
	assert.Equal(t, filepath.Join(dir, "s.yaml"), cfg.Session.File)
}

func TestLoadRejectsRelativeBaseURL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORTAL_BASE_URL", "localhost")

	_, err := Load()
	assert.Error(t, err)
}
