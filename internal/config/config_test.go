package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Empty(t, cfg.BridgeURL)
}

func TestLoad_ReadsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url = "https://kanban.example.com/api"
bridge_url = "http://localhost:9100"
theme = "light"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://kanban.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "http://localhost:9100", cfg.BridgeURL)
	assert.Equal(t, "light", cfg.Theme)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`api_url = "https://file.example.com"`), 0644))
	t.Setenv("FUNKANBAN_API_URL", "https://env.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
}

func TestLoad_RejectsUnknownTheme(t *testing.T) {
	t.Setenv("FUNKANBAN_THEME", "sepia")
	_, err := Load("")
	assert.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := &Config{APIBaseURL: "https://x.example.com/api", Theme: "light"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.APIBaseURL, loaded.APIBaseURL)
	assert.Equal(t, cfg.Theme, loaded.Theme)
}
