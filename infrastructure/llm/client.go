// Package llm provides a unified client for the LLM providers the
// fact-check harness can run against, with cross-cutting concerns layered
// in through a middleware chain.
//
// Providers (OpenAI, Anthropic, Google, and a keyless mock for offline
// demos) implement the minimal CoreLLM interface and register themselves
// with the factory registry. Middleware wraps any CoreLLM to add retries,
// timeouts, rate limiting, circuit breaking, caching, metrics, and tracing
// without the providers knowing about each other.
//
// Basic usage:
//
//	client, err := llm.NewClient("mock", llm.ClientConfig{Model: "mock-fact-checker"})
//	response, err := client.Complete(ctx, "Fact-check this statement...", nil)
//
// With middleware:
//
//	client, err := llm.NewClient("openai", llm.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	    Middleware: []llm.Middleware{
//	        llm.RetryMiddleware(3, 100*time.Millisecond, 2*time.Second),
//	        llm.RateLimitMiddleware(10, 20),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/go-faceoff/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement.
// Everything else in this package, including the middleware chain,
// is built against this interface.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the response
	// text together with input and output token counts.
	// The opts map carries request parameters such as temperature,
	// max_tokens, or provider-specific extras.
	DoRequest(
		ctx context.Context,
		prompt string,
		opts map[string]any,
	) (
		response string,
		tokensIn, tokensOut int,
		err error,
	)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel switches the model used for subsequent requests.
	SetModel(model string)
}

// TokenEstimator approximates token counts for budgeting and cost
// estimation before a request is made.
type TokenEstimator interface {
	// EstimateTokens returns an approximate token count for text.
	EstimateTokens(text string) int
}

// ClientConfig holds the settings for building an LLM client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	// The mock provider ignores it; the others require it.
	APIKey string

	// Model selects the model for requests.
	// Empty means the provider default.
	Model string

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string

	// Timeout bounds individual requests. Zero means no timeout.
	Timeout time.Duration

	// TokenEstimator supplies custom token counting.
	// Nil selects a character-based estimator.
	TokenEstimator TokenEstimator

	// Middleware wraps the provider in the order listed,
	// the first entry being outermost.
	Middleware []Middleware
}

// Middleware wraps a CoreLLM to add behavior around requests.
// Chains compose resilience and observability features without
// touching provider code.
type Middleware func(CoreLLM) CoreLLM

// Client implements ports.LLMClient by delegating to a middleware-wrapped
// CoreLLM provider.
type Client struct {
	core      CoreLLM
	estimator TokenEstimator
}

// NewClient builds a client for the named provider type.
// Provider factories validate their own requirements, so keyless
// providers like the mock work without credentials.
func NewClient(providerType string, config ClientConfig) (ports.LLMClient, error) {
	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	// Apply middleware in reverse order so the first middleware is the outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	estimator := config.TokenEstimator
	if estimator == nil {
		estimator = &SimpleTokenEstimator{}
	}

	return &Client{
		core:      core,
		estimator: estimator,
	}, nil
}

// Complete sends a prompt and returns the response text,
// discarding token usage.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.CompleteWithUsage(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends a prompt and returns the response text along
// with input and output token counts.
func (c *Client) CompleteWithUsage(
	ctx context.Context,
	prompt string,
	options map[string]any,
) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// EstimateTokens approximates the token count of text using the
// configured estimator.
func (c *Client) EstimateTokens(text string) (int, error) {
	return c.estimator.EstimateTokens(text), nil
}

// GetModel returns the model name of the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }

// SimpleTokenEstimator estimates tokens at roughly four characters each,
// a workable heuristic for English text.
type SimpleTokenEstimator struct{}

// EstimateTokens returns an approximate token count for text.
func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ProviderFactory builds a CoreLLM from client configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

// providerFactories maps provider type names to their factories.
// Providers register themselves in init.
var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a factory under a provider type name,
// allowing external packages to plug in additional providers.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}
