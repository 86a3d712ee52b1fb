package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  mode: "debug"
epo:
  consumer_key: "key"
  consumer_secret: "secret"
lens:
  api_token: "token"
rate_limit:
  max_requests_per_minute: 10
cache:
  dir: "/tmp/aether-cache"
search:
  jurisdictions: ["RU", "PL"]
  languages: ["en", "ru"]
log:
  level: "debug"
  format: "console"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "key", cfg.EPO.ConsumerKey)
	assert.Equal(t, "token", cfg.Lens.APIToken)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequestsPerMinute)
	assert.Equal(t, []string{"RU", "PL"}, cfg.Search.Jurisdictions)
	assert.Equal(t, []string{"en", "ru"}, cfg.Search.Languages)

	// Unset fields still receive defaults.
	assert.Equal(t, DefaultEPOBaseURL, cfg.EPO.BaseURL)
	assert.Equal(t, DefaultMaxPrimaryTerms, cfg.EPO.MaxPrimaryTerms)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidContent(t *testing.T) {
	path := createTempConfigFile(t, "server:\n  mode: \"prod\"\n")
	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultCacheDir, cfg.Cache.Dir)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestMustLoad_ReturnsConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg := MustLoad(path)
	assert.Equal(t, 8081, cfg.Server.Port)
}
