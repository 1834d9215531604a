// Package config loads and validates suitectl configuration: built-in
// defaults, an optional suite.yaml overlay with {{.VAR}} env expansion, and
// environment variable overrides matching the suite's documented .env
// surface.
package config

import (
	"fmt"
	"time"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	configDir string

	API       *APIConfig
	Browser   *BrowserConfig
	Engine    *EngineConfig
	Suite     *SuiteConfig
	Retention *RetentionConfig
	Logging   *LoggingConfig
	Providers *ProviderRegistry
}

// ConfigDir returns the directory configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Stats summarizes the loaded configuration for startup logging.
type Stats struct {
	Providers int
	Models    int
}

// Stats returns counts of loaded configuration items.
func (c *Config) Stats() Stats {
	s := Stats{Providers: c.Providers.Len()}
	for _, ms := range c.Providers.ModelCatalog() {
		s.Models += len(ms)
	}
	return s
}

// APIConfig configures the chat backend HTTP server.
type APIConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Addr returns the host:port listen address.
func (c *APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BrowserConfig holds the browser flag defaults applied when a message
// request omits browser_config.
type BrowserConfig struct {
	Headless        bool
	DisableSecurity bool
}

// EngineConfig configures the external browser-automation engine client.
// An empty URL selects the built-in stub engine. ShutdownGrace bounds how
// long shutdown waits for cancelled runs to drain.
type EngineConfig struct {
	URL           string
	RunTimeout    time.Duration
	ShutdownGrace time.Duration
}

// ServiceConfig describes one long-running suite process.
type ServiceConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Dir          string        `yaml:"dir"`
	StartTimeout time.Duration `yaml:"-"`
}

// URL returns the service's base URL.
func (c *ServiceConfig) URL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// SuiteConfig describes the three suite processes the launcher manages.
type SuiteConfig struct {
	Backend  *ServiceConfig
	WebUI    *ServiceConfig
	Frontend *ServiceConfig
}

// RetentionConfig controls the terminal-session sweeper.
type RetentionConfig struct {
	Enabled       bool
	MaxAge        time.Duration
	SweepInterval time.Duration
}

// LoggingConfig controls the rotating JSON log output.
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}
