package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/yshengliao/turbohttp/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Server.Recovery)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "/static", cfg.Static.Prefix)
	assert.Equal(t, "templates", cfg.Templates.Dir)
	assert.Empty(t, cfg.Routing.DefaultMethods)
	assert.False(t, cfg.Admin.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"bad level", func(c *config.Config) { c.Logger.Level = "loud" }, "level"},
		{"bad encoding", func(c *config.Config) { c.Logger.Encoding = "xml" }, "encoding"},
		{"bad prefix", func(c *config.Config) { c.Static.Prefix = "static" }, "prefix"},
		{"bad method", func(c *config.Config) { c.Routing.DefaultMethods = []string{"GET", "FETCH"} }, "defaultmethods"},
		{"admin without address", func(c *config.Config) {
			c.Admin.Enabled = true
			c.Admin.Address = ""
		}, "address"},
		{"negative burst", func(c *config.Config) { c.RateLimit.Burst = -1 }, "burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSimpleLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("TURBOHTTP_SERVER_ADDRESS", ":9090")
	t.Setenv("TURBOHTTP_SERVER_GZIP", "false")
	t.Setenv("TURBOHTTP_SERVER_SHUTDOWN_TIMEOUT", "20s")
	t.Setenv("TURBOHTTP_LOGGER_LEVEL", "debug")
	t.Setenv("TURBOHTTP_ROUTING_DEFAULT_METHODS", "get, post")
	t.Setenv("TURBOHTTP_RATE_LIMIT_RATE", "50")

	cfg := &config.Config{}
	require.NoError(t, config.NewSimpleLoader().Load(cfg))

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.False(t, cfg.Server.GZip)
	assert.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"get", "post"}, cfg.Routing.DefaultMethods)
	assert.Equal(t, 50, cfg.RateLimit.Rate)
}

func TestSimpleLoader_LoadFromYAML(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
server:
  address: ":8181"
  h2c: true
templates:
  dir: "views"
  watch: true
routing:
  default_methods: [GET, HEAD]
`)

	cfg := &config.Config{}
	require.NoError(t, config.NewSimpleLoader().WithYAMLFile(path).Load(cfg))

	assert.Equal(t, ":8181", cfg.Server.Address)
	assert.True(t, cfg.Server.H2C)
	assert.Equal(t, "views", cfg.Templates.Dir)
	assert.True(t, cfg.Templates.Watch)
	assert.Equal(t, []string{"GET", "HEAD"}, cfg.Routing.DefaultMethods)
	// untouched sections keep defaults
	assert.Equal(t, "/static", cfg.Static.Prefix)
}

func TestSimpleLoader_BadEnvValue(t *testing.T) {
	t.Setenv("TURBOHTTP_SERVER_READ_TIMEOUT", "soon")

	err := config.NewSimpleLoader().Load(&config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TURBOHTTP_SERVER_READ_TIMEOUT")
}

func TestLoggerConfig_Build(t *testing.T) {
	logger, err := config.LoggerConfig{Level: "warn", Encoding: "console", OutputPaths: []string{"stderr"}}.Build()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = config.LoggerConfig{Level: "debug"}.Build()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = config.LoggerConfig{Level: "nope"}.Build()
	assert.Error(t, err)
}
