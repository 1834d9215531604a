package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProviders(t *testing.T) {
	registry := NewProviderRegistry(builtinProviders())

	assert.Equal(t, 3, registry.Len())
	assert.Equal(t, []string{"anthropic", "google", "openai"}, registry.Names())

	openai, err := registry.Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", openai.DefaultModel)
	assert.Equal(t, "OPENAI_API_KEY", openai.KeyEnv)
	assert.Contains(t, openai.Models, "gpt-4o-mini")

	anthropic, err := registry.Get("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-20241022", anthropic.DefaultModel)
	assert.Equal(t, "ANTHROPIC_API_KEY", anthropic.KeyEnv)

	google, err := registry.Get("google")
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", google.DefaultModel)
	assert.Equal(t, "GOOGLE_API_KEY", google.KeyEnv)
}

func TestGetUnknownProvider(t *testing.T) {
	registry := NewProviderRegistry(builtinProviders())

	_, err := registry.Get("cohere")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderNotFound)
	assert.Contains(t, err.Error(), "cohere")
}

func TestResolveModel(t *testing.T) {
	registry := NewProviderRegistry(builtinProviders())
	openai, err := registry.Get("openai")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", openai.ResolveModel(""), "empty request falls back to the default model")
	assert.Equal(t, "gpt-4o-mini", openai.ResolveModel("gpt-4o-mini"))
	assert.Equal(t, "some-future-model", openai.ResolveModel("some-future-model"),
		"unknown models pass through untouched")
}

func TestAPIKey(t *testing.T) {
	registry := NewProviderRegistry(builtinProviders())
	openai, err := registry.Get("openai")
	require.NoError(t, err)

	t.Run("missing key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")

		_, keyErr := openai.APIKey()
		require.Error(t, keyErr)
		assert.Contains(t, keyErr.Error(), "OPENAI_API_KEY environment variable is required")
		assert.False(t, openai.HasKey())
	})

	t.Run("present key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")

		key, keyErr := openai.APIKey()
		require.NoError(t, keyErr)
		assert.Equal(t, "sk-test", key)
		assert.True(t, openai.HasKey())
	})
}

func TestModelCatalog(t *testing.T) {
	registry := NewProviderRegistry(builtinProviders())

	catalog := registry.ModelCatalog()

	require.Len(t, catalog, 3)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"}, catalog["openai"])
	assert.Equal(t, []string{"claude-3-5-sonnet-20241022", "claude-3-5-haiku-20241022", "claude-3-opus-20240229"}, catalog["anthropic"])
	assert.Equal(t, []string{"gemini-1.5-pro", "gemini-1.5-flash", "gemini-pro"}, catalog["google"])

	// Mutating the returned catalog must not touch the registry.
	catalog["openai"][0] = "mutated"
	openai, err := registry.Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", openai.Models[0])
}
