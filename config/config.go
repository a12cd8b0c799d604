// Package config provides configuration loading for turbohttp applications
package config

import (
	"time"

	"github.com/yshengliao/turbohttp/pkg/validation"
)

// Config represents the application configuration structure.
// The yaml and env tags are shared by SimpleLoader and BofryLoader.
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	Logger    LoggerConfig    `yaml:"logger" env:"LOGGER"`
	Static    StaticConfig    `yaml:"static" env:"STATIC"`
	Templates TemplatesConfig `yaml:"templates" env:"TEMPLATES"`
	Routing   RoutingConfig   `yaml:"routing" env:"ROUTING"`
	Admin     AdminConfig     `yaml:"admin" env:"ADMIN"`
	RateLimit RateLimitConfig `yaml:"rate_limit" env:"RATE_LIMIT"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address         string        `yaml:"address" env:"ADDRESS" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" default:"10s"`
	BodyLimit       string        `yaml:"body_limit" env:"BODY_LIMIT" default:"4M"`
	GZip            bool          `yaml:"gzip" env:"GZIP" default:"true"`
	CORS            bool          `yaml:"cors" env:"CORS" default:"false"`
	Recovery        bool          `yaml:"recovery" env:"RECOVERY" default:"true"`
	H2C             bool          `yaml:"h2c" env:"H2C" default:"false"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level            string   `yaml:"level" env:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Encoding         string   `yaml:"encoding" env:"ENCODING" default:"json" validate:"oneof=json console"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS" default:"stdout"`
	ErrorOutputPaths []string `yaml:"error_output_paths" env:"ERROR_OUTPUT_PATHS" default:"stderr"`
}

// StaticConfig holds static asset configuration. Requests under Prefix are
// served from Root and never reach the router. An empty Root disables it.
type StaticConfig struct {
	Prefix string `yaml:"prefix" env:"PREFIX" default:"/static" validate:"urlprefix"`
	Root   string `yaml:"root" env:"ROOT" default:"static"`
	MaxAge int    `yaml:"max_age" env:"MAX_AGE" default:"3600" validate:"min=0"`
}

// TemplatesConfig holds template rendering configuration. An empty Dir
// disables rendering.
type TemplatesConfig struct {
	Dir   string `yaml:"dir" env:"DIR" default:"templates"`
	Watch bool   `yaml:"watch" env:"WATCH" default:"false"`
}

// RoutingConfig holds route table configuration
type RoutingConfig struct {
	// DefaultMethods are allowed on routes registered without methods
	DefaultMethods []string `yaml:"default_methods" env:"DEFAULT_METHODS" validate:"dive,httpmethod"`
}

// AdminConfig holds the admin listener configuration (metrics, health, routes)
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED" default:"false"`
	Address string `yaml:"address" env:"ADDRESS" default:":9090" validate:"required_if=Enabled true"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED" default:"false"`
	Rate    int  `yaml:"rate" env:"RATE" default:"10" validate:"min=0"`
	Burst   int  `yaml:"burst" env:"BURST" default:"20" validate:"min=0"`
}

// Loader is implemented by SimpleLoader and BofryLoader
type Loader interface {
	Load(cfg *Config) error
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "4M",
			GZip:            true,
			Recovery:        true,
		},
		Logger: LoggerConfig{
			Level:            "info",
			Encoding:         "json",
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		},
		Static: StaticConfig{
			Prefix: "/static",
			Root:   "static",
			MaxAge: 3600,
		},
		Templates: TemplatesConfig{
			Dir: "templates",
		},
		Admin: AdminConfig{
			Address: ":9090",
		},
		RateLimit: RateLimitConfig{
			Rate:  10,
			Burst: 20,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return validation.NewValidator().Validate(c)
}
