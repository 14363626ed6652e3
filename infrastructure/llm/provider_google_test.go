package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func TestNewGoogleProvider_RequiresAPIKey(t *testing.T) {
	// Given a configuration without an API key
	// When building the provider
	_, err := newGoogleProvider(ClientConfig{})

	// Then creation should fail with the sentinel error
	require.Error(t, err, "missing API key should fail")
	assert.ErrorIs(t, err, ErrEmptyAPIKey, "error should be the empty key sentinel")
}

func TestGoogleProvider_BuildsContents(t *testing.T) {
	provider := &googleProvider{}

	t.Run("plain prompt", func(t *testing.T) {
		// Given options without a system prompt
		options := ParseRequestOptions(nil, GoogleDefaultModel)

		// When building the contents
		contents := provider.buildContents("Is the Earth round?", options)

		// Then a single user content should carry the prompt
		require.Len(t, contents, 1, "one content block expected")
		require.Len(t, contents[0].Parts, 1, "one part expected")
		assert.Equal(t, "Is the Earth round?", contents[0].Parts[0].Text, "prompt should pass through")
	})

	t.Run("system prompt is prepended", func(t *testing.T) {
		// Given options with a system prompt
		options := ParseRequestOptions(map[string]any{"system": "You are a fact checker."}, GoogleDefaultModel)

		// When building the contents
		contents := provider.buildContents("Is the Earth round?", options)

		// Then the system text should be folded into the user prompt
		require.Len(t, contents, 1, "one content block expected")
		text := contents[0].Parts[0].Text
		assert.Contains(t, text, "System: You are a fact checker.", "system prompt should be prepended")
		assert.Contains(t, text, "User: Is the Earth round?", "user prompt should follow")
	})
}

func TestGoogleProvider_BuildsGenerationConfig(t *testing.T) {
	provider := &googleProvider{}

	// Given options with the standard parameters plus top_k and JSON mode
	options := ParseRequestOptions(map[string]any{
		"temperature":   0.1,
		"max_tokens":    256,
		"top_p":         0.9,
		"top_k":         100,
		"json_response": true,
	}, GoogleDefaultModel)

	// When building the generation config
	config := provider.buildGenerationConfig(options)

	// Then each parameter should be mapped and clamped
	require.NotNil(t, config.Temperature, "temperature should be set")
	assert.InDelta(t, 0.1, float64(*config.Temperature), 0.0001, "temperature should apply")
	assert.Equal(t, int32(256), config.MaxOutputTokens, "max tokens should apply")
	require.NotNil(t, config.TopP, "top_p should be set")
	assert.InDelta(t, 0.9, float64(*config.TopP), 0.0001, "top_p should apply")
	require.NotNil(t, config.TopK, "top_k should be set")
	assert.InDelta(t, 40, float64(*config.TopK), 0.0001, "top_k should clamp to the provider maximum")
	assert.Equal(t, "application/json", config.ResponseMIMEType, "JSON mode should set the response MIME type")
}

func TestGoogleProvider_UsageTokensFallsBackToEstimate(t *testing.T) {
	provider := &googleProvider{tokenCounter: NewTokenCounter()}

	t.Run("uses metadata when present", func(t *testing.T) {
		usage := &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     42,
			CandidatesTokenCount: 17,
		}
		assert.Equal(t, 42, provider.usageTokens(usage, true, "ignored"), "prompt count should come from metadata")
		assert.Equal(t, 17, provider.usageTokens(usage, false, "ignored"), "candidate count should come from metadata")
	})

	t.Run("estimates when metadata is missing", func(t *testing.T) {
		text := "some response text"
		want := provider.tokenCounter.EstimateTokens(text)
		assert.Equal(t, want, provider.usageTokens(nil, false, text), "estimate should fill in for missing metadata")
	})
}

func TestLooksLikeFilePath(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"plain API key", "AIzaSyTestKey123", false},
		{"absolute path", "/etc/gcloud/key.json", true},
		{"relative path with slash", "keys/service.json", true},
		{"windows path", `keys\service.json`, true},
		{"json suffix", "service-account.json", true},
		{"p12 suffix", "legacy.p12", true},
		{"pem suffix", "cert.pem", true},
		{"credentials in name", "my-credentials-file", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeFilePath(tt.value), "path detection for %q", tt.value)
		})
	}
}

func TestBuildAuthConfig(t *testing.T) {
	t.Run("API key selects the Gemini backend", func(t *testing.T) {
		config, err := buildAuthConfig(ClientConfig{APIKey: "AIzaSyTestKey123"})

		require.NoError(t, err, "API key auth should succeed")
		assert.Equal(t, "AIzaSyTestKey123", config.APIKey, "API key should be set")
		assert.Equal(t, genai.BackendGeminiAPI, config.Backend, "Gemini API backend should be selected")
	})

	t.Run("missing credentials file is rejected", func(t *testing.T) {
		_, err := buildAuthConfig(ClientConfig{APIKey: "/nonexistent/creds.json"})

		require.Error(t, err, "missing file should fail")
		assert.Contains(t, err.Error(), "credentials file not found", "error should explain the problem")
	})
}

func TestContainsContentPolicyError(t *testing.T) {
	tests := []struct {
		name string
		err  *googleapi.Error
		want bool
	}{
		{
			name: "safety in message",
			err:  &googleapi.Error{Message: "Request blocked due to SAFETY settings"},
			want: true,
		},
		{
			name: "policy in message",
			err:  &googleapi.Error{Message: "violates content policy"},
			want: true,
		},
		{
			name: "safety reason code",
			err:  &googleapi.Error{Errors: []googleapi.ErrorItem{{Reason: "SAFETY"}}},
			want: true,
		},
		{
			name: "ordinary error",
			err:  &googleapi.Error{Message: "quota exceeded"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsContentPolicyError(tt.err), "content policy detection")
		})
	}
}
