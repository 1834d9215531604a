package config

import (
	"fmt"
	"os"
	"sort"
)

// Provider describes one LLM vendor selectable for automation runs.
type Provider struct {
	Name         string   `yaml:"-"`
	Models       []string `yaml:"models"`
	DefaultModel string   `yaml:"default_model"`
	KeyEnv       string   `yaml:"key_env"`
}

// ResolveModel returns the requested model, or the provider default when the
// request leaves it empty.
func (p Provider) ResolveModel(requested string) string {
	if requested != "" {
		return requested
	}
	return p.DefaultModel
}

// APIKey reads the provider's API key from the environment. The error text
// matches what operators see from the suite's other components.
func (p Provider) APIKey() (string, error) {
	key := os.Getenv(p.KeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable is required", p.KeyEnv)
	}
	return key, nil
}

// HasKey reports whether the provider's API key is present in the
// environment.
func (p Provider) HasKey() bool {
	return os.Getenv(p.KeyEnv) != ""
}

// ProviderRegistry is the read-only provider → models mapping served by the
// providers endpoint and consulted per automation run.
type ProviderRegistry struct {
	providers map[string]Provider
}

// NewProviderRegistry builds a registry from the given providers.
func NewProviderRegistry(providers []Provider) *ProviderRegistry {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &ProviderRegistry{providers: byName}
}

// Get looks up a provider by name.
func (r *ProviderRegistry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// Names returns all provider names in sorted order.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelCatalog returns the provider → ordered model list mapping.
func (r *ProviderRegistry) ModelCatalog() map[string][]string {
	catalog := make(map[string][]string, len(r.providers))
	for name, p := range r.providers {
		models := make([]string, len(p.Models))
		copy(models, p.Models)
		catalog[name] = models
	}
	return catalog
}

// Len returns the number of registered providers.
func (r *ProviderRegistry) Len() int {
	return len(r.providers)
}

// builtinProviders returns the provider catalog shipped with the suite.
func builtinProviders() []Provider {
	return []Provider{
		{
			Name:         "openai",
			Models:       []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"},
			DefaultModel: "gpt-4o",
			KeyEnv:       "OPENAI_API_KEY",
		},
		{
			Name:         "anthropic",
			Models:       []string{"claude-3-5-sonnet-20241022", "claude-3-5-haiku-20241022", "claude-3-opus-20240229"},
			DefaultModel: "claude-3-5-sonnet-20241022",
			KeyEnv:       "ANTHROPIC_API_KEY",
		},
		{
			Name:         "google",
			Models:       []string{"gemini-1.5-pro", "gemini-1.5-flash", "gemini-pro"},
			DefaultModel: "gemini-1.5-pro",
			KeyEnv:       "GOOGLE_API_KEY",
		},
	}
}
