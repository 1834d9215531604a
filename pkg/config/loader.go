package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// suiteYAML mirrors the suite.yaml file structure. Durations are strings
// ("10m", "30s") parsed during resolution; booleans are pointers so that an
// explicit `false` can override a `true` default.
type suiteYAML struct {
	API       *APIConfig          `yaml:"api"`
	Browser   *browserYAML        `yaml:"browser"`
	Engine    *engineYAML         `yaml:"engine"`
	Suite     *servicesYAML       `yaml:"suite"`
	Retention *retentionYAML      `yaml:"retention"`
	Logging   *LoggingConfig      `yaml:"logging"`
	Providers map[string]Provider `yaml:"providers"`
}

type browserYAML struct {
	Headless        *bool `yaml:"headless"`
	DisableSecurity *bool `yaml:"disable_security"`
}

type engineYAML struct {
	URL           string `yaml:"url"`
	RunTimeout    string `yaml:"run_timeout"`
	ShutdownGrace string `yaml:"shutdown_grace"`
}

type servicesYAML struct {
	Backend  *serviceYAML `yaml:"backend"`
	WebUI    *serviceYAML `yaml:"webui"`
	Frontend *serviceYAML `yaml:"frontend"`
}

type serviceYAML struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Dir          string `yaml:"dir"`
	StartTimeout string `yaml:"start_timeout"`
}

type retentionYAML struct {
	Enabled       *bool  `yaml:"enabled"`
	MaxAge        string `yaml:"max_age"`
	SweepInterval string `yaml:"sweep_interval"`
}

// Load builds the runtime configuration: built-in defaults, overlaid with
// suite.yaml from configDir when present, overlaid with environment
// variables, then validated. A missing suite.yaml is not an error; the suite
// is designed to run with nothing but its defaults and a .env file.
func Load(configDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.configDir = configDir

	y, err := readSuiteYAML(configDir)
	if err != nil {
		return nil, err
	}
	if y != nil {
		if err := applyYAML(cfg, y); err != nil {
			return nil, NewLoadError("suite.yaml", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	slog.Info("Configuration loaded",
		"config_dir", configDir,
		"providers", stats.Providers,
		"models", stats.Models,
		"api_addr", cfg.API.Addr())

	return cfg, nil
}

func readSuiteYAML(configDir string) (*suiteYAML, error) {
	path := filepath.Join(configDir, "suite.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, NewLoadError("suite.yaml", err)
	}

	data = ExpandEnv(data)

	var y suiteYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, NewLoadError("suite.yaml", fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	return &y, nil
}

func applyYAML(cfg *Config, y *suiteYAML) error {
	if y.API != nil {
		if err := mergo.Merge(cfg.API, y.API, mergo.WithOverride); err != nil {
			return fmt.Errorf("failed to merge api config: %w", err)
		}
	}
	if y.Logging != nil {
		if err := mergo.Merge(cfg.Logging, y.Logging, mergo.WithOverride); err != nil {
			return fmt.Errorf("failed to merge logging config: %w", err)
		}
	}

	if y.Browser != nil {
		if y.Browser.Headless != nil {
			cfg.Browser.Headless = *y.Browser.Headless
		}
		if y.Browser.DisableSecurity != nil {
			cfg.Browser.DisableSecurity = *y.Browser.DisableSecurity
		}
	}

	if y.Engine != nil {
		if y.Engine.URL != "" {
			cfg.Engine.URL = y.Engine.URL
		}
		cfg.Engine.RunTimeout = resolveDuration("engine.run_timeout", y.Engine.RunTimeout, cfg.Engine.RunTimeout)
		cfg.Engine.ShutdownGrace = resolveDuration("engine.shutdown_grace", y.Engine.ShutdownGrace, cfg.Engine.ShutdownGrace)
	}

	if y.Suite != nil {
		resolveService(cfg.Suite.Backend, y.Suite.Backend, "suite.backend")
		resolveService(cfg.Suite.WebUI, y.Suite.WebUI, "suite.webui")
		resolveService(cfg.Suite.Frontend, y.Suite.Frontend, "suite.frontend")
	}

	if y.Retention != nil {
		if y.Retention.Enabled != nil {
			cfg.Retention.Enabled = *y.Retention.Enabled
		}
		cfg.Retention.MaxAge = resolveDuration("retention.max_age", y.Retention.MaxAge, cfg.Retention.MaxAge)
		cfg.Retention.SweepInterval = resolveDuration("retention.sweep_interval", y.Retention.SweepInterval, cfg.Retention.SweepInterval)
	}

	if len(y.Providers) > 0 {
		cfg.Providers = mergeProviders(builtinProviders(), y.Providers)
	}

	return nil
}

func resolveService(dst *ServiceConfig, y *serviceYAML, name string) {
	if y == nil {
		return
	}
	if y.Host != "" {
		dst.Host = y.Host
	}
	if y.Port != 0 {
		dst.Port = y.Port
	}
	if y.Dir != "" {
		dst.Dir = y.Dir
	}
	dst.StartTimeout = resolveDuration(name+".start_timeout", y.StartTimeout, dst.StartTimeout)
}

// resolveDuration parses a YAML duration string, keeping the fallback and
// warning when the value is malformed.
func resolveDuration(field, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration in configuration, using default",
			"field", field,
			"value", value,
			"default", fallback,
			"error", err)
		return fallback
	}
	return d
}

// mergeProviders overlays user-defined providers on the built-in catalog.
// Known names are overridden field-by-field; unknown names are added.
func mergeProviders(builtin []Provider, overrides map[string]Provider) *ProviderRegistry {
	merged := make([]Provider, 0, len(builtin)+len(overrides))
	seen := make(map[string]bool, len(builtin))

	for _, p := range builtin {
		if o, ok := overrides[p.Name]; ok {
			if len(o.Models) > 0 {
				p.Models = o.Models
			}
			if o.DefaultModel != "" {
				p.DefaultModel = o.DefaultModel
			}
			if o.KeyEnv != "" {
				p.KeyEnv = o.KeyEnv
			}
		}
		merged = append(merged, p)
		seen[p.Name] = true
	}

	for name, o := range overrides {
		if seen[name] {
			continue
		}
		o.Name = name
		merged = append(merged, o)
	}

	return NewProviderRegistry(merged)
}

// applyEnvOverrides applies the documented .env surface on top of defaults
// and suite.yaml. Environment always wins.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("API_HOST"); v != "" {
		cfg.API.Host = v
		cfg.Suite.Backend.Host = v
	}
	overrideIntEnv("API_PORT", func(p int) {
		cfg.API.Port = p
		cfg.Suite.Backend.Port = p
	})
	if v := os.Getenv("WEBUI_HOST"); v != "" {
		cfg.Suite.WebUI.Host = v
	}
	overrideIntEnv("WEBUI_PORT", func(p int) { cfg.Suite.WebUI.Port = p })
	overrideIntEnv("FRONTEND_PORT", func(p int) { cfg.Suite.Frontend.Port = p })

	overrideBoolEnv("BROWSER_HEADLESS", func(b bool) { cfg.Browser.Headless = b })
	overrideBoolEnv("BROWSER_DISABLE_SECURITY", func(b bool) { cfg.Browser.DisableSecurity = b })

	if v := os.Getenv("ENGINE_URL"); v != "" {
		cfg.Engine.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
}

func overrideIntEnv(name string, apply func(int)) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Invalid integer in environment, ignoring", "var", name, "value", v)
		return
	}
	apply(n)
}

func overrideBoolEnv(name string, apply func(bool)) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Invalid boolean in environment, ignoring", "var", name, "value", v)
		return
	}
	apply(b)
}
