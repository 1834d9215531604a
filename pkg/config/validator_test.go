package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	assert.NoError(t, validate(DefaultConfig()))
}

func TestValidateAPIPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := DefaultConfig()
		cfg.API.Port = port
		cfg.Suite.Backend.Port = 8000 // keep the suite checks out of the way

		err := validate(cfg)

		require.Error(t, err, "port %d should be rejected", port)
		assert.ErrorIs(t, err, ErrInvalidValue)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "api", ve.Component)
		assert.Equal(t, "port", ve.Field)
	}
}

func TestValidateSuitePortsMustBeDistinct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suite.Frontend.Port = cfg.Suite.WebUI.Port

	err := validate(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "distinct ports")
}

func TestValidateServiceStartTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suite.WebUI.StartTimeout = 0

	err := validate(cfg)

	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "suite.webui", ve.Component)
	assert.Equal(t, "start_timeout", ve.Field)
}

func TestValidateEngineRunTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.RunTimeout = 0

	err := validate(cfg)

	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "engine", ve.Component)
}

func TestValidateEngineShutdownGrace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.ShutdownGrace = 0

	err := validate(cfg)

	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "engine", ve.Component)
	assert.Equal(t, "shutdown_grace", ve.Field)
}

func TestValidateRetention(t *testing.T) {
	t.Run("enabled requires positive windows", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Retention.MaxAge = 0

		err := validate(cfg)

		require.Error(t, err)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "retention", ve.Component)
		assert.Equal(t, "max_age", ve.Field)
	})

	t.Run("disabled skips the window checks", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Retention.Enabled = false
		cfg.Retention.MaxAge = 0
		cfg.Retention.SweepInterval = 0

		assert.NoError(t, validate(cfg))
	})
}

func TestValidateLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"

	err := validate(cfg)

	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "logging", ve.Component)
	assert.Equal(t, "level", ve.Field)
}

func TestValidateProviders(t *testing.T) {
	base := func() *Config {
		cfg := DefaultConfig()
		cfg.Engine.RunTimeout = 10 * time.Minute
		return cfg
	}

	t.Run("empty registry", func(t *testing.T) {
		cfg := base()
		cfg.Providers = NewProviderRegistry(nil)

		err := validate(cfg)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})

	t.Run("no models", func(t *testing.T) {
		cfg := base()
		cfg.Providers = NewProviderRegistry([]Provider{
			{Name: "empty", KeyEnv: "EMPTY_API_KEY", DefaultModel: "x"},
		})

		err := validate(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "models")
	})

	t.Run("missing key_env", func(t *testing.T) {
		cfg := base()
		cfg.Providers = NewProviderRegistry([]Provider{
			{Name: "keyless", Models: []string{"m1"}, DefaultModel: "m1"},
		})

		err := validate(cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "key_env")
	})

	t.Run("default model not in list", func(t *testing.T) {
		cfg := base()
		cfg.Providers = NewProviderRegistry([]Provider{
			{Name: "odd", Models: []string{"m1", "m2"}, DefaultModel: "m3", KeyEnv: "ODD_API_KEY"},
		})

		err := validate(cfg)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.Contains(t, err.Error(), "m3")
	})
}
