package config

import (
	"path/filepath"
	"time"
)

// Defaults for the documented suite ports and timeouts.
const (
	DefaultBackendPort  = 8000
	DefaultWebUIPort    = 7788
	DefaultFrontendPort = 5173
)

// DefaultConfig returns the built-in configuration: what the suite runs with
// when no suite.yaml and no environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		API: &APIConfig{
			Host: "127.0.0.1",
			Port: DefaultBackendPort,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://localhost:7788",
			},
		},
		Browser: &BrowserConfig{
			Headless:        false,
			DisableSecurity: true,
		},
		Engine: &EngineConfig{
			URL:           "",
			RunTimeout:    10 * time.Minute,
			ShutdownGrace: 10 * time.Second,
		},
		Suite: &SuiteConfig{
			Backend: &ServiceConfig{
				Host:         "127.0.0.1",
				Port:         DefaultBackendPort,
				StartTimeout: 30 * time.Second,
			},
			WebUI: &ServiceConfig{
				Host:         "127.0.0.1",
				Port:         DefaultWebUIPort,
				Dir:          "browser-use-web-ui",
				StartTimeout: 60 * time.Second,
			},
			Frontend: &ServiceConfig{
				Host:         "127.0.0.1",
				Port:         DefaultFrontendPort,
				Dir:          filepath.Join("workflows", "frontend"),
				StartTimeout: 30 * time.Second,
			},
		},
		Retention: &RetentionConfig{
			Enabled:       true,
			MaxAge:        24 * time.Hour,
			SweepInterval: time.Hour,
		},
		Logging: &LoggingConfig{
			Dir:   "logs",
			Level: "info",
		},
		Providers: NewProviderRegistry(builtinProviders()),
	}
}
