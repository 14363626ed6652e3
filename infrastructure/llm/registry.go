// Registry management for running the harness against multiple providers.
// The registry resolves "provider" or "provider/model" refs to lazily
// built, cached clients, reading API keys from the conventional
// environment variables. The mock provider needs no credentials and is
// therefore always available, which keeps the demo runnable offline.
package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahrav/go-faceoff/internal/ports"
)

// Registry manages clients across the configured providers with shared
// defaults for timeouts and middleware.
type Registry struct {
	// providers maps provider names to their configuration.
	providers map[string]ProviderConfig
	// clients caches built clients under "provider/model" keys.
	clients map[string]ports.LLMClient
	// defaultProvider is used when no provider is specified.
	defaultProvider string
	// defaultMiddleware is applied to every client the registry builds.
	defaultMiddleware []Middleware
	// defaultTimeout is the request timeout for built clients.
	defaultTimeout time.Duration

	mu sync.RWMutex
}

// ProviderConfig describes one provider the registry can build clients for.
type ProviderConfig struct {
	// Type selects the registered provider factory.
	Type string
	// EnvVar names the environment variable holding the API key.
	// Empty means the provider needs no credentials.
	EnvVar string
	// DefaultModel is used when a ref names only the provider.
	DefaultModel string
	// SupportedModels restricts which models may be requested.
	// Empty means any model is accepted.
	SupportedModels []string
	// BaseURL overrides the provider's default endpoint.
	BaseURL string
	// Middleware is appended after the registry defaults.
	Middleware []Middleware
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Providers defines the available providers.
	Providers map[string]ProviderConfig
	// DefaultProvider is used when no provider is specified.
	DefaultProvider string
	// DefaultTimeout is the request timeout for all built clients.
	DefaultTimeout time.Duration
	// DefaultMiddleware is applied to all built clients.
	DefaultMiddleware []Middleware
}

// DefaultProviders lists the providers the harness knows out of the box.
// The mock provider carries no EnvVar, so it is always available.
var DefaultProviders = map[string]ProviderConfig{
	"mock": {
		Type:         "mock",
		DefaultModel: MockDefaultModel,
	},
	"openai": {
		Type:         "openai",
		EnvVar:       "OPENAI_API_KEY",
		DefaultModel: OpenAIDefaultModel,
		SupportedModels: []string{
			"gpt-4.1", "gpt-4.1-mini", "gpt-4.1-nano",
			"gpt-4o", "gpt-4o-mini",
			"gpt-4", "gpt-4-turbo",
			"gpt-3.5-turbo",
			"o4-mini", "o3", "o3-mini", "o1", "o1-mini",
		},
	},
	"anthropic": {
		Type:         "anthropic",
		EnvVar:       "ANTHROPIC_API_KEY",
		DefaultModel: AnthropicDefaultModel,
		SupportedModels: []string{
			"claude-4-opus", "claude-4-sonnet",
			"claude-3-7-sonnet-latest",
			"claude-3-5-sonnet-latest", "claude-3-5-haiku-latest",
			"claude-3-haiku-20240307",
		},
	},
	"google": {
		Type:         "google",
		EnvVar:       "GOOGLE_API_KEY",
		DefaultModel: GoogleDefaultModel,
		SupportedModels: []string{
			"gemini-2.5-pro", "gemini-2.5-flash",
			"gemini-2.0-flash", "gemini-2.0-flash-lite",
			"gemini-1.5-pro", "gemini-1.5-flash",
		},
	},
}

// NewRegistry creates a registry from the configuration,
// validating that the default provider exists.
func NewRegistry(config RegistryConfig) (*Registry, error) {
	if config.DefaultProvider == "" {
		return nil, fmt.Errorf("default provider cannot be empty")
	}

	if _, exists := config.Providers[config.DefaultProvider]; !exists {
		return nil, fmt.Errorf("default provider %q not found in providers configuration", config.DefaultProvider)
	}

	return &Registry{
		providers:         config.Providers,
		clients:           make(map[string]ports.LLMClient),
		defaultProvider:   config.DefaultProvider,
		defaultMiddleware: config.DefaultMiddleware,
		defaultTimeout:    config.DefaultTimeout,
	}, nil
}

// GetDefaultClient returns a client for the default provider's
// default model.
func (r *Registry) GetDefaultClient() (ports.LLMClient, error) {
	providerConfig, exists := r.providers[r.defaultProvider]
	if !exists {
		return nil, fmt.Errorf("default provider %q not found in configuration", r.defaultProvider)
	}

	return r.GetClient(r.defaultProvider + "/" + providerConfig.DefaultModel)
}

// GetClient resolves a ref to a client, building and caching it on first
// use. Refs take the form "provider" (default model) or "provider/model".
func (r *Registry) GetClient(ref string) (ports.LLMClient, error) {
	if ref == "" {
		return nil, fmt.Errorf("provider reference cannot be empty; use GetDefaultClient() for default provider")
	}

	provider, model := r.parseRef(ref)
	key := r.buildCacheKey(provider, model)

	r.mu.RLock()
	if client, exists := r.clients[key]; exists {
		r.mu.RUnlock()
		return client, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, exists := r.clients[key]; exists {
		return client, nil
	}

	client, err := r.createClient(provider, model)
	if err != nil {
		return nil, err
	}

	r.clients[key] = client
	return client, nil
}

// RegisterClient builds a client from explicit configuration and stores it
// under the given name, inheriting registry defaults.
func (r *Registry) RegisterClient(name string, config ClientConfig) error {
	if name == "" {
		return fmt.Errorf("client name cannot be empty")
	}

	provider, model := r.parseRef(name)
	// The explicit config model wins over the ref so the cache key always
	// matches the model the client was built with.
	if config.Model != "" {
		model = config.Model
	} else {
		config.Model = model
	}

	providerConfig, exists := r.providers[provider]
	if !exists {
		return fmt.Errorf("unknown provider %q", provider)
	}

	if config.Timeout == 0 {
		config.Timeout = r.defaultTimeout
	}
	config.Middleware = append(append([]Middleware{}, r.defaultMiddleware...), config.Middleware...)

	client, err := NewClient(providerConfig.Type, config)
	if err != nil {
		return fmt.Errorf("failed to create client %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[r.buildCacheKey(provider, model)] = client
	return nil
}

// Providers returns the configured provider names in sorted order.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasCredentials reports whether the named provider can be used right now:
// either it needs no API key or its environment variable is set.
func (r *Registry) HasCredentials(name string) bool {
	providerConfig, exists := r.providers[name]
	if !exists {
		return false
	}
	if providerConfig.EnvVar == "" {
		return true
	}
	return os.Getenv(providerConfig.EnvVar) != ""
}

// parseRef splits "provider" or "provider/model" into its parts,
// substituting the provider's default model when none is given.
func (r *Registry) parseRef(ref string) (provider, model string) {
	parts := strings.SplitN(ref, "/", 2)
	provider = parts[0]

	if len(parts) > 1 {
		model = parts[1]
	} else if providerConfig, ok := r.providers[provider]; ok {
		model = providerConfig.DefaultModel
	}

	return
}

func (r *Registry) buildCacheKey(provider, model string) string {
	if model == "" {
		return provider
	}
	return provider + "/" + model
}

// createClient builds a client for the provider and model,
// resolving the API key from the environment.
func (r *Registry) createClient(provider, model string) (ports.LLMClient, error) {
	providerConfig, exists := r.providers[provider]
	if !exists {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	if len(providerConfig.SupportedModels) > 0 && !isModelSupported(model, providerConfig.SupportedModels) {
		return nil, fmt.Errorf("model %q is not supported by provider %q. Supported models: %v",
			model, provider, providerConfig.SupportedModels)
	}

	var apiKey string
	if providerConfig.EnvVar != "" {
		apiKey = os.Getenv(providerConfig.EnvVar)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable not set for provider %q", providerConfig.EnvVar, provider)
		}
	}

	config := ClientConfig{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: providerConfig.BaseURL,
		Timeout: r.defaultTimeout,
	}

	config.Middleware = append([]Middleware{}, r.defaultMiddleware...)
	config.Middleware = append(config.Middleware, providerConfig.Middleware...)

	return NewClient(providerConfig.Type, config)
}

func isModelSupported(model string, supportedModels []string) bool {
	for _, supported := range supportedModels {
		if model == supported {
			return true
		}
	}
	return false
}
