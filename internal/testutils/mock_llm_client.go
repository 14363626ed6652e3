// Package testutils provides deterministic test doubles for the comparison
// harness, chiefly a scriptable LLM client that answers fact-check prompts
// without touching a provider.
package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ahrav/go-faceoff/internal/ports"
)

// MockLLMClient implements ports.LLMClient with scripted responses selected
// by prompt substring matching. It records every prompt it receives so tests
// can assert on what the agents actually sent.
// The client is safe for concurrent use.
type MockLLMClient struct {
	mu sync.Mutex

	// model is the mock model identifier.
	model string

	// responses are consulted newest-first so a test-specific pattern
	// overrides the defaults.
	responses []MockResponse

	// fallback answers prompts no pattern matches.
	fallback MockResponse

	// err, when set, fails every completion.
	err error

	// prompts records each prompt passed to Complete, in order.
	prompts []string

	// options records the options map of each completion, in order.
	options []map[string]any
}

// MockResponse defines a pre-configured response pattern for the mock client.
type MockResponse struct {
	// Pattern is matched case-insensitively as a substring of the prompt.
	// An empty pattern installs the fallback response.
	Pattern string

	// Response is the text returned for matching prompts.
	Response string
}

// NewMockLLMClient creates a MockLLMClient pre-configured for the two
// fact-checking prompt shapes: prompts that ask for JSON get an uncertain
// verdict in the structured reply contract, free-text prompts get an
// uncertain verdict as a plain sentence.
func NewMockLLMClient(model string) *MockLLMClient {
	client := &MockLLMClient{model: model}
	client.setupDefaultResponses()
	return client
}

// setupDefaultResponses installs uncertain verdicts for both prompt shapes
// so an unscripted client still produces parseable replies.
func (m *MockLLMClient) setupDefaultResponses() {
	// Schema prompts always spell out the JSON reply contract.
	m.AddResponse(MockResponse{
		Pattern:  "json",
		Response: `{"classification": "uncertain", "explanation": "Unable to verify the statement.", "confidence": 0.5}`,
	})

	// Free-text prompts ask the model to lead with its verdict.
	m.AddResponse(MockResponse{
		Pattern:  "verdict",
		Response: "Uncertain. Unable to verify the statement.",
	})

	m.AddResponse(MockResponse{
		Pattern:  "",
		Response: "Uncertain. Unable to verify the statement.",
	})
}

// AddResponse registers a response pattern. Later registrations take
// priority, so tests can shadow the defaults with statement-specific
// replies.
func (m *MockLLMClient) AddResponse(response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if response.Pattern == "" {
		m.fallback = response
		return
	}
	m.responses = append(m.responses, response)
}

// SetError forces every subsequent completion to fail with err. Passing nil
// restores normal operation.
func (m *MockLLMClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete returns the newest registered response whose pattern appears in
// the prompt, or the fallback when nothing matches.
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, copyOptions(options))

	if m.err != nil {
		return "", m.err
	}
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	lower := strings.ToLower(prompt)
	for i := len(m.responses) - 1; i >= 0; i-- {
		if strings.Contains(lower, strings.ToLower(m.responses[i].Pattern)) {
			return m.responses[i].Response, nil
		}
	}
	return m.fallback.Response, nil
}

// EstimateTokens approximates token usage at four characters per token with
// a minimum of one token for non-empty text.
func (m *MockLLMClient) EstimateTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	tokens := len(text) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens, nil
}

// GetModel returns the mock model identifier.
func (m *MockLLMClient) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// SetModel updates the mock model identifier.
func (m *MockLLMClient) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

// CallCount reports how many completions have been requested.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or an empty string when no
// completion has been requested.
func (m *MockLLMClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Prompts returns a copy of every prompt received, in order.
func (m *MockLLMClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastOptions returns the options map of the most recent completion, or nil
// when no completion has been requested. Options are copied at call time so
// later mutation by the caller does not change what was recorded.
func (m *MockLLMClient) LastOptions() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.options) == 0 {
		return nil
	}
	return m.options[len(m.options)-1]
}

func copyOptions(options map[string]any) map[string]any {
	if options == nil {
		return nil
	}
	out := make(map[string]any, len(options))
	for k, v := range options {
		out[k] = v
	}
	return out
}

// Reset clears scripted responses, recorded prompts, and any forced error,
// then restores the default configuration.
func (m *MockLLMClient) Reset() {
	m.mu.Lock()
	m.responses = nil
	m.fallback = MockResponse{}
	m.err = nil
	m.prompts = nil
	m.options = nil
	m.mu.Unlock()

	m.setupDefaultResponses()
}

// Verify interface compliance at compile time.
var _ ports.LLMClient = (*MockLLMClient)(nil)
