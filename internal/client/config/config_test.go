package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"opencircle"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoad_Defaults(t *testing.T) {
	resetArgs(t)
	cfg := Load()

	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.CookieWaitTimeout)
	assert.Equal(t, 150*time.Millisecond, cfg.CookieWaitInterval)
	assert.Equal(t, 5*time.Minute, cfg.CacheStaleTime)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	resetArgs(t)
	t.Setenv("OPENCIRCLE_API_URL", "https://api.example.com/api")
	t.Setenv("OPENCIRCLE_TIMEOUT", "30s")

	cfg := Load()

	assert.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoad_JsonOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.json")
	body := `{
		"api_base_url": "https://json.example.com/api",
		"cookie_wait_timeout": "2s",
		"cookie_wait_interval": "50ms"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	resetArgs(t, "-c", path)
	t.Setenv("OPENCIRCLE_API_URL", "https://env.example.com/api")

	cfg := Load()

	assert.Equal(t, "https://json.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.CookieWaitTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.CookieWaitInterval)
}

func TestLoad_FlagsWinOverJson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_base_url": "https://json.example.com/api"}`), 0o600))

	resetArgs(t, "-c", path, "-u", "https://flag.example.com/api", "-p", "local.db")

	cfg := Load()

	assert.Equal(t, "https://flag.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "local.db", cfg.PrefsPath)
}
