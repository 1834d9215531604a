package config

import (
	"fmt"
	"slices"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// validate performs cross-field validation on the resolved configuration.
func validate(cfg *Config) error {
	if err := validatePort("api", cfg.API.Port); err != nil {
		return err
	}
	for name, svc := range map[string]*ServiceConfig{
		"suite.backend":  cfg.Suite.Backend,
		"suite.webui":    cfg.Suite.WebUI,
		"suite.frontend": cfg.Suite.Frontend,
	} {
		if err := validatePort(name, svc.Port); err != nil {
			return err
		}
		if svc.StartTimeout <= 0 {
			return NewValidationError(name, "start_timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue))
		}
	}
	if cfg.Suite.Backend.Port == cfg.Suite.WebUI.Port ||
		cfg.Suite.Backend.Port == cfg.Suite.Frontend.Port ||
		cfg.Suite.WebUI.Port == cfg.Suite.Frontend.Port {
		return NewValidationError("suite", "port", fmt.Errorf("%w: suite services must listen on distinct ports", ErrInvalidValue))
	}

	if cfg.Engine.RunTimeout <= 0 {
		return NewValidationError("engine", "run_timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if cfg.Engine.ShutdownGrace <= 0 {
		return NewValidationError("engine", "shutdown_grace", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}

	if cfg.Retention.Enabled {
		if cfg.Retention.MaxAge <= 0 {
			return NewValidationError("retention", "max_age", fmt.Errorf("%w: must be positive", ErrInvalidValue))
		}
		if cfg.Retention.SweepInterval <= 0 {
			return NewValidationError("retention", "sweep_interval", fmt.Errorf("%w: must be positive", ErrInvalidValue))
		}
	}

	if !slices.Contains(validLogLevels, cfg.Logging.Level) {
		return NewValidationError("logging", "level", fmt.Errorf("%w: must be one of debug, info, warn, error", ErrInvalidValue))
	}

	if cfg.Providers.Len() == 0 {
		return NewValidationError("providers", "", fmt.Errorf("%w: at least one provider", ErrMissingRequiredField))
	}
	for _, name := range cfg.Providers.Names() {
		p, _ := cfg.Providers.Get(name)
		if len(p.Models) == 0 {
			return NewValidationError("provider "+name, "models", fmt.Errorf("%w: at least one model", ErrMissingRequiredField))
		}
		if p.KeyEnv == "" {
			return NewValidationError("provider "+name, "key_env", ErrMissingRequiredField)
		}
		if p.DefaultModel == "" {
			return NewValidationError("provider "+name, "default_model", ErrMissingRequiredField)
		}
		if !slices.Contains(p.Models, p.DefaultModel) {
			return NewValidationError("provider "+name, "default_model",
				fmt.Errorf("%w: %q is not in the model list", ErrInvalidValue, p.DefaultModel))
		}
	}

	return nil
}

func validatePort(component string, port int) error {
	if port < 1 || port > 65535 {
		return NewValidationError(component, "port", fmt.Errorf("%w: %d is not a valid TCP port", ErrInvalidValue, port))
	}
	return nil
}
