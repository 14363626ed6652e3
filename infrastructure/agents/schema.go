package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/ahrav/go-faceoff/internal/domain"
	"github.com/ahrav/go-faceoff/internal/ports"
)

const (
	// DefaultSchemaTemperature keeps replies stable across runs.
	DefaultSchemaTemperature = 0.1

	// DefaultSchemaMaxTokens bounds reply length.
	DefaultSchemaMaxTokens = 1000
)

// schemaPrompt is the Go template for the structured prompt. The statement
// slots in through {{.Statement}} so prompt text and data never mix.
const schemaPrompt = `You are a fact-checking AI. Analyze the following statement and determine whether it is True, False, or Uncertain. Provide a one-sentence explanation for your reasoning.

Statement: "{{.Statement}}"`

// schemaContract is appended to every prompt so the model sees the exact
// reply shape it must produce.
const schemaContract = "\n\nIMPORTANT: You must respond with valid JSON in exactly this format:\n" +
	`{"classification": "<True|False|Uncertain>", "explanation": "<one sentence>", "confidence": <0.0-1.0>}`

// SchemaConfig tunes the schema-enforced agent.
type SchemaConfig struct {
	// Temperature is the sampling temperature passed to the provider.
	Temperature float64 `validate:"min=0,max=2"`

	// MaxTokens caps the reply length requested from the provider.
	MaxTokens int `validate:"min=1"`

	// MinConfidence rejects replies whose self-reported confidence falls
	// below it. Zero disables the floor.
	MinConfidence float64 `validate:"min=0,max=1"`
}

// DefaultSchemaConfig returns the tuning used by the comparison harness.
func DefaultSchemaConfig() SchemaConfig {
	return SchemaConfig{
		Temperature: DefaultSchemaTemperature,
		MaxTokens:   DefaultSchemaMaxTokens,
	}
}

// SchemaResponse is the reply contract the schema agent enforces.
type SchemaResponse struct {
	// Classification must carry one of the three verdict labels.
	Classification string `json:"classification" validate:"required"`

	// Explanation is the model's one-sentence reasoning.
	Explanation string `json:"explanation" validate:"required"`

	// Confidence is the model's self-reported certainty in [0, 1].
	Confidence float64 `json:"confidence" validate:"min=0.0,max=1.0"`
}

// SchemaAgent fact-checks statements through a strict reply contract. The
// prompt spells out a JSON schema, and any reply that fails to parse or
// validate becomes a check failure instead of a guess. That refusal to
// absorb malformed output is the point of contrast with the vanilla agent.
type SchemaAgent struct {
	client         ports.LLMClient
	config         SchemaConfig
	promptTemplate *template.Template
}

var _ ports.FactChecker = (*SchemaAgent)(nil)

// NewSchemaAgent builds the schema-enforced agent around an LLM client.
func NewSchemaAgent(client ports.LLMClient, config SchemaConfig) (*SchemaAgent, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid schema agent config: %w", err)
	}

	tmpl, err := template.New("schemaPrompt").Parse(schemaPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema prompt template: %w", err)
	}

	return &SchemaAgent{
		client:         client,
		config:         config,
		promptTemplate: tmpl,
	}, nil
}

// Name identifies the agent's comparison group.
func (a *SchemaAgent) Name() string { return SchemaGroup }

// Check classifies a statement by demanding a JSON reply and enforcing the
// contract on the way back. Provider trouble and contract violations both
// surface as domain.CheckFailure rather than a Go error.
func (a *SchemaAgent) Check(ctx context.Context, statement domain.Statement) (domain.FactCheckResult, error) {
	if strings.TrimSpace(statement.Text) == "" {
		return nil, ErrEmptyStatement
	}

	prompt, err := a.buildPrompt(statement.Text)
	if err != nil {
		return nil, err
	}

	response, err := a.client.Complete(ctx, prompt, map[string]any{
		"temperature":   a.config.Temperature,
		"max_tokens":    a.config.MaxTokens,
		"json_response": true,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return domain.CheckFailure{Err: fmt.Errorf("completion failed: %w", err)}, nil
	}

	result, err := a.parseContract(response)
	if err != nil {
		return domain.CheckFailure{Err: err}, nil
	}

	if count, err := a.client.EstimateTokens(prompt + response); err == nil {
		result.TokenCount = count
	}
	return result, nil
}

// buildPrompt renders the statement into the prompt template and appends the
// reply contract.
func (a *SchemaAgent) buildPrompt(text string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Statement string }{Statement: text}
	if err := a.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String() + schemaContract, nil
}

// parseContract enforces the reply contract. Every divergence from the
// schema is returned as an error so Check records it as a failure.
func (a *SchemaAgent) parseContract(response string) (domain.CheckSuccess, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return domain.CheckSuccess{}, fmt.Errorf("%w (response length: %d chars)", ErrNoJSONFound, len(response))
	}

	var reply SchemaResponse
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return domain.CheckSuccess{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if err := validate.Struct(reply); err != nil {
		return domain.CheckSuccess{}, fmt.Errorf("response failed contract validation: %w", err)
	}

	classification, ok := domain.ParseClassification(reply.Classification)
	if !ok {
		return domain.CheckSuccess{}, fmt.Errorf("%w: %q", ErrUnknownClassification, reply.Classification)
	}

	if reply.Confidence < a.config.MinConfidence {
		return domain.CheckSuccess{}, fmt.Errorf("confidence %.2f below minimum %.2f",
			reply.Confidence, a.config.MinConfidence)
	}

	return domain.CheckSuccess{
		Classification: classification,
		Explanation:    reply.Explanation,
		Confidence:     reply.Confidence,
	}, nil
}

// extractJSON pulls a JSON object out of an LLM reply that may wrap it in
// markdown fences or surrounding prose. It returns the empty string when no
// object can be found.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	// Fenced ```json blocks are the most explicit signal.
	if start := strings.Index(response, "```json"); start != -1 {
		start += len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	// Generic fences may still hold JSON after a language identifier line.
	if start := strings.Index(response, "```"); start != -1 {
		start += len("```")
		if newline := strings.Index(response[start:], "\n"); newline != -1 {
			start += newline + 1
		}
		if end := strings.Index(response[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	// Fall back to brace matching from the first opening brace, tracking
	// string boundaries so braces inside values do not miscount.
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escapeNext := false
	for i := start; i < len(response); i++ {
		ch := response[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch ch {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return response[start : i+1]
				}
			}
		}
	}

	return ""
}
