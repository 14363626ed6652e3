package llm

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T) *openAIProvider {
	t.Helper()
	core, err := newOpenAIProvider(ClientConfig{APIKey: "test-key"})
	require.NoError(t, err, "provider should build with an API key")
	provider, ok := core.(*openAIProvider)
	require.True(t, ok, "factory should return an openAIProvider")
	return provider
}

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	// Given a configuration without an API key
	// When building the provider
	_, err := newOpenAIProvider(ClientConfig{})

	// Then creation should fail with the sentinel error
	require.Error(t, err, "missing API key should fail")
	assert.ErrorIs(t, err, ErrEmptyAPIKey, "error should be the empty key sentinel")
}

func TestNewOpenAIProvider_DefaultModel(t *testing.T) {
	// Given a configuration without a model
	provider := newTestOpenAIProvider(t)

	// Then the provider should fall back to its default
	assert.Equal(t, OpenAIDefaultModel, provider.GetModel(), "default model should apply")
}

func TestNewOpenAIProvider_RejectsInvalidBaseURL(t *testing.T) {
	// Given a configuration with a malformed base URL
	// When building the provider
	_, err := newOpenAIProvider(ClientConfig{APIKey: "test-key", BaseURL: "not-a-url"})

	// Then creation should fail with URL guidance
	require.Error(t, err, "malformed base URL should fail")
	assert.Contains(t, err.Error(), "invalid BaseURL", "error should mention the base URL")
}

func TestOpenAIProvider_BuildsMessagesWithSystemPrompt(t *testing.T) {
	// Given options carrying a system prompt
	provider := newTestOpenAIProvider(t)
	options := ParseRequestOptions(map[string]any{"system": "You are a fact checker."}, provider.GetModel())

	// When building the request
	req := provider.buildChatCompletionRequest("Is the Earth round?", options)

	// Then the system message should precede the user message
	require.Len(t, req.Messages, 2, "system and user messages expected")
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role, "first message should be the system prompt")
	assert.Equal(t, "You are a fact checker.", req.Messages[0].Content, "system content should match")
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role, "second message should be the user prompt")
}

func TestOpenAIProvider_AppliesRequestParameters(t *testing.T) {
	// Given options with the standard generation parameters
	provider := newTestOpenAIProvider(t)
	options := ParseRequestOptions(map[string]any{
		"temperature": 0.1,
		"max_tokens":  256,
		"top_p":       0.9,
	}, provider.GetModel())

	// When building the request
	req := provider.buildChatCompletionRequest("test", options)

	// Then each parameter should be applied
	assert.InDelta(t, 0.1, req.Temperature, 0.0001, "temperature should apply")
	assert.Equal(t, 256, req.MaxTokens, "max tokens should apply")
	assert.InDelta(t, 0.9, req.TopP, 0.0001, "top_p should apply")
}

func TestOpenAIProvider_JSONResponseFormat(t *testing.T) {
	// Given options demanding a JSON response
	provider := newTestOpenAIProvider(t)
	options := ParseRequestOptions(map[string]any{"json_response": true}, provider.GetModel())

	// When building the request
	req := provider.buildChatCompletionRequest("test", options)

	// Then the response format should force a JSON object
	require.NotNil(t, req.ResponseFormat, "response format should be set")
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type,
		"JSON object format should be requested")
}

func TestOpenAIProvider_ClampsPenalties(t *testing.T) {
	// Given options with out-of-range penalties
	provider := newTestOpenAIProvider(t)
	options := ParseRequestOptions(map[string]any{
		"frequency_penalty": 5.0,
		"presence_penalty":  -5.0,
	}, provider.GetModel())

	// When building the request
	req := provider.buildChatCompletionRequest("test", options)

	// Then the penalties should be clamped into the valid range
	assert.InDelta(t, MaxPenalty, float64(req.FrequencyPenalty), 0.0001, "frequency penalty should clamp high")
	assert.InDelta(t, MinPenalty, float64(req.PresencePenalty), 0.0001, "presence penalty should clamp low")
}
