package agents

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-faceoff/internal/domain"
	"github.com/ahrav/go-faceoff/internal/ports"
)

// foldCaser is a package-level Unicode case folder so tokenizing does not
// build a new caser per word.
var foldCaser = cases.Fold()

const (
	// DefaultVanillaTemperature keeps replies stable across runs.
	DefaultVanillaTemperature = 0.1

	// DefaultVanillaMaxTokens bounds reply length.
	DefaultVanillaMaxTokens = 1000

	// DefaultMatchThreshold is the minimum normalized similarity for a fuzzy
	// verdict-word match.
	DefaultMatchThreshold = 0.8

	// midTextDiscount scales confidence when the verdict word shows up
	// somewhere other than the start of the reply.
	midTextDiscount = 0.75

	// fallbackConfidence is assigned when no verdict word can be found and
	// the reply is recorded as uncertain.
	fallbackConfidence = 0.2
)

// VanillaConfig tunes the free-text agent.
type VanillaConfig struct {
	// Temperature is the sampling temperature passed to the provider.
	Temperature float64 `validate:"min=0,max=2"`

	// MaxTokens caps the reply length requested from the provider.
	MaxTokens int `validate:"min=1"`

	// MatchThreshold is the minimum similarity for a fuzzy verdict-word
	// match in [0, 1].
	MatchThreshold float64 `validate:"min=0,max=1"`
}

// DefaultVanillaConfig returns the tuning used by the comparison harness.
func DefaultVanillaConfig() VanillaConfig {
	return VanillaConfig{
		Temperature:    DefaultVanillaTemperature,
		MaxTokens:      DefaultVanillaMaxTokens,
		MatchThreshold: DefaultMatchThreshold,
	}
}

// VanillaAgent fact-checks statements with an unconstrained prompt and
// scrapes the verdict out of whatever free text comes back. It deliberately
// has no reply contract, which is the failure mode the harness measures.
type VanillaAgent struct {
	client ports.LLMClient
	config VanillaConfig
}

var _ ports.FactChecker = (*VanillaAgent)(nil)

// NewVanillaAgent builds the free-text agent around an LLM client.
func NewVanillaAgent(client ports.LLMClient, config VanillaConfig) (*VanillaAgent, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid vanilla agent config: %w", err)
	}
	return &VanillaAgent{client: client, config: config}, nil
}

// Name identifies the agent's comparison group.
func (a *VanillaAgent) Name() string { return VanillaGroup }

// Check classifies a statement by prompting for free text and scanning the
// reply for a verdict word. Provider trouble surfaces as domain.CheckFailure;
// an unrecognizable reply degrades to an uncertain verdict at low confidence
// rather than failing, because silently absorbing malformed output is exactly
// how unstructured prompting behaves.
func (a *VanillaAgent) Check(ctx context.Context, statement domain.Statement) (domain.FactCheckResult, error) {
	if strings.TrimSpace(statement.Text) == "" {
		return nil, ErrEmptyStatement
	}

	prompt := vanillaPrompt(statement.Text)
	response, err := a.client.Complete(ctx, prompt, map[string]any{
		"temperature": a.config.Temperature,
		"max_tokens":  a.config.MaxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return domain.CheckFailure{Err: fmt.Errorf("completion failed: %w", err)}, nil
	}

	result := a.parseFreeText(response)
	if count, err := a.client.EstimateTokens(prompt + response); err == nil {
		result.TokenCount = count
	}
	return result, nil
}

// vanillaPrompt builds the unstructured prompt by plain string concatenation.
// The statement stays quoted after the "Statement:" marker.
func vanillaPrompt(text string) string {
	return "Determine if the following statement is True, False, or Uncertain. " +
		"Start your answer with the verdict, then explain your reasoning in one sentence.\n\n" +
		"Statement: \"" + text + "\""
}

// verdictLexicons maps verdict words onto classifications. False markers are
// consulted first so near-miss tokens like "incorrect" resolve against their
// own lexicon before anything fuzzy-matches "correct".
var verdictLexicons = []struct {
	classification domain.Classification
	words          []string
}{
	{domain.ClassificationFalse, []string{"false", "incorrect", "wrong", "inaccurate"}},
	{domain.ClassificationTrue, []string{"true", "correct", "accurate"}},
	{domain.ClassificationUncertain, []string{"uncertain", "unclear", "unknown", "unsure", "ambiguous"}},
}

// parseFreeText scans an unconstrained reply for the earliest verdict word.
// A leading verdict keeps full match confidence and turns the remainder into
// the explanation. A verdict buried mid-reply is discounted. No verdict at
// all degrades to uncertain at fallbackConfidence.
func (a *VanillaAgent) parseFreeText(response string) domain.CheckSuccess {
	tokens := tokenize(response)
	for i, tok := range tokens {
		classification, score, ok := matchVerdict(tok.text, a.config.MatchThreshold)
		if !ok {
			continue
		}

		confidence := score
		explanation := ""
		if i == 0 {
			explanation = strings.TrimLeft(response[tok.end:], " \t\r\n.,:;!-")
		} else {
			confidence *= midTextDiscount
		}
		if explanation == "" {
			explanation = strings.TrimSpace(response)
		}

		return domain.CheckSuccess{
			Classification: classification,
			Explanation:    explanation,
			Confidence:     confidence,
		}
	}

	return domain.CheckSuccess{
		Classification: domain.ClassificationUncertain,
		Explanation:    strings.TrimSpace(response),
		Confidence:     fallbackConfidence,
	}
}

// matchVerdict resolves a folded token against the lexicons. Exact matches
// win outright; otherwise the best fuzzy match at or above the threshold is
// taken.
func matchVerdict(token string, threshold float64) (domain.Classification, float64, bool) {
	for _, lexicon := range verdictLexicons {
		for _, word := range lexicon.words {
			if token == word {
				return lexicon.classification, 1.0, true
			}
		}
	}

	var best domain.Classification
	bestScore := 0.0
	found := false
	for _, lexicon := range verdictLexicons {
		for _, word := range lexicon.words {
			if score := similarity(token, word); score >= threshold && score > bestScore {
				best = lexicon.classification
				bestScore = score
				found = true
			}
		}
	}
	return best, bestScore, found
}

// token is a folded word plus the byte offset just past it in the original
// reply, so a leading verdict can hand the remainder over as the explanation.
type token struct {
	text string
	end  int
}

// tokenize splits a reply on non-letter runes and case-folds each word.
func tokenize(s string) []token {
	var tokens []token
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, token{text: foldCaser.String(s[start:i]), end: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: foldCaser.String(s[start:]), end: len(s)})
	}
	return tokens
}

// similarity scores two tokens in [0, 1] using Levenshtein distance
// normalized by the longer rune length. The distance operates on runes, so
// the rune count is what normalizes it.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1.0
	}

	score := 1.0 - float64(distance)/float64(longest)
	if score < 0 {
		score = 0
	}
	return score
}
