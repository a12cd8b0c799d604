package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshengliao/turbohttp/config"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBofryLoader_LoadDefaults(t *testing.T) {
	loader := config.NewBofryLoader()
	cfg := &config.Config{}

	require.NoError(t, loader.Load(cfg))

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.Recovery)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
	assert.Equal(t, "/static", cfg.Static.Prefix)
}

func TestBofryLoader_LoadFromYAML(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
server:
  address: ":8888"
  gzip: false
  read_timeout: 45s
logger:
  level: "warn"
  encoding: "console"
static:
  prefix: "/assets"
  max_age: 60
admin:
  enabled: true
  address: ":9191"
`)

	cfg := &config.Config{}
	require.NoError(t, config.NewBofryLoader().WithYAMLFile(path).Load(cfg))

	assert.Equal(t, ":8888", cfg.Server.Address)
	assert.False(t, cfg.Server.GZip)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Encoding)
	assert.Equal(t, "/assets", cfg.Static.Prefix)
	assert.Equal(t, 60, cfg.Static.MaxAge)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, ":9191", cfg.Admin.Address)
}

func TestBofryLoader_EnvOverridesYAML(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
server:
  address: ":7777"
logger:
  level: "error"
`)
	t.Setenv("TURBOHTTP_SERVER_ADDRESS", ":9999")
	t.Setenv("TURBOHTTP_RATE_LIMIT_BURST", "5")

	cfg := &config.Config{}
	require.NoError(t, config.NewBofryLoader().WithYAMLFile(path).Load(cfg))

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, "error", cfg.Logger.Level)
}

func TestBofryLoader_LoadFromDotEnv(t *testing.T) {
	path := writeTempFile(t, ".env", `
TURBOHTTP_SERVER_ADDRESS=:6666
TURBOHTTP_LOGGER_LEVEL=debug
`)
	t.Cleanup(func() {
		// LoadDotEnvFile exports into the process environment
		os.Unsetenv("TURBOHTTP_SERVER_ADDRESS")
		os.Unsetenv("TURBOHTTP_LOGGER_LEVEL")
	})

	cfg := &config.Config{}
	require.NoError(t, config.NewBofryLoader().WithDotEnvFile(path).Load(cfg))

	assert.Equal(t, ":6666", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestBofryLoader_Validation(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
logger:
  level: "verbose"
`)

	err := config.NewBofryLoader().WithYAMLFile(path).Load(&config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level")
}

func TestBofryLoader_MissingFiles(t *testing.T) {
	loader := config.NewBofryLoader().
		WithYAMLFile("/non/existent/file.yaml").
		WithDotEnvFile("/non/existent/.env")

	cfg := &config.Config{}
	require.NoError(t, loader.Load(cfg))
	assert.Equal(t, ":8080", cfg.Server.Address)
}
