package llm

import (
	"context"
	"sync"
	"time"
)

// MockCoreLLM is a configurable CoreLLM test double.
// It gives middleware tests precise control over responses, timing,
// and failure patterns.
type MockCoreLLM struct {
	mu sync.Mutex

	// Response configuration.
	Response      string
	TokensIn      int
	TokensOut     int
	Error         error
	Model         string
	ResponseDelay time.Duration

	// FailUntilAttempt fails the first N calls, then succeeds.
	FailUntilAttempt int
	// AlternateErrors fails every second call.
	AlternateErrors bool

	// Call tracking.
	CallCount      int
	LastPrompt     string
	LastOpts       map[string]any
	CallTimestamps []time.Time
}

// NewMockCoreLLM returns a mock that succeeds with a fixed response.
func NewMockCoreLLM() *MockCoreLLM {
	return &MockCoreLLM{
		Response:       "test response",
		TokensIn:       10,
		TokensOut:      20,
		Model:          "test-model",
		CallTimestamps: make([]time.Time, 0),
	}
}

// DoRequest implements CoreLLM with the configured behavior.
func (m *MockCoreLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastPrompt = prompt
	m.LastOpts = opts
	m.CallTimestamps = append(m.CallTimestamps, time.Now())

	if m.ResponseDelay > 0 {
		select {
		case <-time.After(m.ResponseDelay):
		case <-ctx.Done():
			return "", 0, 0, ctx.Err()
		}
	}

	if m.FailUntilAttempt > 0 {
		if m.CallCount <= m.FailUntilAttempt {
			return "", 0, 0, m.failure()
		}
		return m.Response, m.TokensIn, m.TokensOut, nil
	}

	if m.AlternateErrors && m.CallCount%2 == 0 {
		return "", 0, 0, m.failure()
	}

	if m.Error != nil {
		return "", 0, 0, m.Error
	}

	return m.Response, m.TokensIn, m.TokensOut, nil
}

func (m *MockCoreLLM) failure() error {
	if m.Error != nil {
		return m.Error
	}
	return &testError{message: "simulated failure"}
}

// GetModel returns the configured model name.
func (m *MockCoreLLM) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Model
}

// SetModel updates the model name.
func (m *MockCoreLLM) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Model = model
}

// GetCallCount returns how many times DoRequest was called.
func (m *MockCoreLLM) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// testError is a minimal error type for simulated failures.
type testError struct {
	message string
}

func (e *testError) Error() string { return e.message }
