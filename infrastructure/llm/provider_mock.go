package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MockDefaultModel is the model name reported by the mock provider.
const MockDefaultModel = "mock-fact-checker"

// mockResponseDelay is the fixed simulated inference latency.
// Long enough to make latency measurements non-zero, short enough
// to keep full demo runs instant.
const mockResponseDelay = 10 * time.Millisecond

func init() {
	RegisterProviderFactory("mock", newMockProvider)
}

// mockProvider implements CoreLLM without any external service,
// so the comparison harness runs offline and without API keys.
//
// Classification follows a keyword rule: a statement mentioning
// "true" or "correct" is confirmed, one mentioning "false" or
// "incorrect" is refuted, and anything else comes back uncertain.
// The shape of the reply adapts to the prompt: a JSON document when
// the prompt asks for JSON, a plain sentence otherwise.
type mockProvider struct {
	BaseProvider
	tokenCounter *TokenCounter
}

// newMockProvider builds the mock provider. No API key is required.
func newMockProvider(config ClientConfig) (CoreLLM, error) {
	model := config.Model
	if model == "" {
		model = MockDefaultModel
	}

	return &mockProvider{
		BaseProvider: BaseProvider{model: model},
		tokenCounter: NewTokenCounter(),
	}, nil
}

// mockVerdict pairs a classification with its canned explanation and
// confidence.
type mockVerdict struct {
	Classification string  `json:"classification"`
	Explanation    string  `json:"explanation"`
	Confidence     float64 `json:"confidence"`
}

// DoRequest simulates an LLM call: it waits the fixed latency, derives
// a verdict from the statement, and renders it in the format the
// prompt asks for.
func (p *mockProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	select {
	case <-time.After(mockResponseDelay):
	case <-ctx.Done():
		return "", 0, 0, ctx.Err()
	}

	verdict := classifyStatement(extractStatement(prompt))

	var response string
	if wantsJSON(prompt, opts) {
		data, err := json.Marshal(verdict)
		if err != nil {
			return "", 0, 0, fmt.Errorf("failed to encode mock response: %w", err)
		}
		response = string(data)
	} else {
		response = fmt.Sprintf("%s. %s", capitalize(verdict.Classification), verdict.Explanation)
	}

	tokensIn := p.tokenCounter.EstimateTokens(prompt)
	tokensOut := p.tokenCounter.EstimateTokens(response)

	return response, tokensIn, tokensOut, nil
}

// classifyStatement applies the keyword rule to a statement.
// The false markers are checked first because "incorrect" contains
// "correct" as a substring.
func classifyStatement(statement string) mockVerdict {
	lower := strings.ToLower(statement)

	switch {
	case strings.Contains(lower, "false") || strings.Contains(lower, "incorrect"):
		return mockVerdict{
			Classification: "false",
			Explanation:    "Statement appears to be factually incorrect.",
			Confidence:     0.90,
		}
	case strings.Contains(lower, "true") || strings.Contains(lower, "correct"):
		return mockVerdict{
			Classification: "true",
			Explanation:    "Statement appears to be factually correct.",
			Confidence:     0.95,
		}
	default:
		return mockVerdict{
			Classification: "uncertain",
			Explanation:    "Statement requires further verification.",
			Confidence:     0.50,
		}
	}
}

// extractStatement pulls the quoted statement out of a fact-check prompt.
// Prompts embed the statement as `Statement: "..."`; matching on the
// whole prompt would trip on instruction words like "True or False".
// When no quoted statement is found the full prompt is used.
func extractStatement(prompt string) string {
	const marker = `Statement: "`

	idx := strings.LastIndex(prompt, marker)
	if idx < 0 {
		return prompt
	}

	rest := prompt[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return prompt
	}

	return rest[:end]
}

// wantsJSON reports whether the caller expects a JSON document,
// either through the json_response option or by asking for JSON
// in the prompt itself.
func wantsJSON(prompt string, opts map[string]any) bool {
	if jsonMode, ok := opts["json_response"].(bool); ok && jsonMode {
		return true
	}
	return strings.Contains(strings.ToLower(prompt), "json")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
