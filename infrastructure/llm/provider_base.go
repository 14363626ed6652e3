package llm

import "sync"

// BaseProvider supplies the thread-safe model bookkeeping shared by all
// provider implementations.
type BaseProvider struct {
	mu    sync.RWMutex
	model string
}

// GetModel returns the currently configured model name.
// It is safe for concurrent use.
func (b *BaseProvider) GetModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

// SetModel updates the model used for subsequent requests.
// It is safe for concurrent use.
func (b *BaseProvider) SetModel(model string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = model
}

// TokenCounter estimates token counts when a provider response does not
// report exact usage.
type TokenCounter struct {
	// CharactersPerToken is the average characters-per-token ratio used
	// for estimation.
	CharactersPerToken float64
}

// NewTokenCounter returns a TokenCounter with a ratio suited to English text.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{
		CharactersPerToken: 4.0, // A common approximation for English text.
	}
}

// EstimateTokens approximates the token count of text from its length.
func (tc *TokenCounter) EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(len(text)) / tc.CharactersPerToken)
}

// GetTokenCount returns actualCount when the API reported one,
// falling back to estimation from the text otherwise.
func (tc *TokenCounter) GetTokenCount(actualCount int, text string) int {
	if actualCount > 0 {
		return actualCount
	}
	return tc.EstimateTokens(text)
}
