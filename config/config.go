package config

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto Config fields: HTTP_SERVER_READ_TIMEOUT sets "read.timeout".
const EnvPrefix = "HTTP_SERVER"

// Config holds all application configuration.
type Config struct {
	Host           string        `config:"host"`
	Port           int           `config:"port"`
	Directory      string        `config:"directory"`
	ReadTimeout    time.Duration `config:"read.timeout"`
	WriteTimeout   time.Duration `config:"write.timeout"`
	MaxConnections int           `config:"max.conns"`
	MaxHeaderBytes int           `config:"max.header.bytes"`
	MaxBodyBytes   int           `config:"max.body.bytes"`
	Env            string        `config:"env"`
	LogLevel       string        `config:"log.level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           4221,
		Directory:      ".",
		MaxHeaderBytes: 1 << 20,
		MaxBodyBytes:   32 << 20,
		Env:            "development",
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, then the environment, then
// command-line flags in args (without the program name).
func Load(args []string) (*Config, error) {
	cfg := Default()

	m := NewManager()
	m.LoadFromEnv(EnvPrefix)
	if err := m.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Listen address")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.Directory, "directory", cfg.Directory, "Base directory for /files routes")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "Per-request read timeout (0 disables)")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Per-response write timeout (0 disables)")
	fs.IntVar(&cfg.MaxConnections, "max-conns", cfg.MaxConnections, "Maximum open connections (0 is unlimited)")
	fs.IntVar(&cfg.MaxHeaderBytes, "max-header-bytes", cfg.MaxHeaderBytes, "Maximum size of a request header section")
	fs.IntVar(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "Maximum declared Content-Length of a request")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "Environment (development/production)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug/info/warn/error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that flag parsing cannot
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid max-conns %d", c.MaxConnections)
	}
	if c.MaxHeaderBytes < 0 || c.MaxBodyBytes < 0 {
		return fmt.Errorf("size limits must not be negative")
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Directory == "" {
		return fmt.Errorf("directory must not be empty")
	}
	return nil
}

// Addr returns the host:port listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
