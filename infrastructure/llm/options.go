package llm

import (
	"fmt"
	"net/url"
	"time"
)

// Defaults and valid ranges for common request parameters.
// The ranges are shared across providers so option parsing behaves
// identically no matter which backend serves the request.
const (
	// DefaultMaxTokens caps generation length when the caller does not
	// specify max_tokens. Fact-check replies are short, so this is generous.
	DefaultMaxTokens = 1000
	// MinTemperature is the minimum allowed sampling temperature.
	MinTemperature = 0.0
	// MaxTemperature is the maximum allowed sampling temperature.
	// Set to 2.0 to accommodate providers like Gemini.
	MaxTemperature = 2.0
	// MinTopP is the minimum allowed nucleus sampling value.
	MinTopP = 0.0
	// MaxTopP is the maximum allowed nucleus sampling value.
	MaxTopP = 1.0
	// MinPenalty is the minimum allowed frequency or presence penalty.
	MinPenalty = -2.0
	// MaxPenalty is the maximum allowed frequency or presence penalty.
	MaxPenalty = 2.0
	// MinTimeout is the shortest request timeout a client may configure.
	MinTimeout = 1 * time.Second
	// MaxTimeout is the longest request timeout a client may configure.
	MaxTimeout = 10 * time.Minute
)

// RequestOptions is the standardized set of per-request parameters parsed
// from the generic options map every provider receives.
type RequestOptions struct {
	// MaxTokens limits the number of tokens to generate.
	MaxTokens int
	// Model overrides the client's configured model for this request.
	Model string
	// Temperature controls output randomness.
	// Nil means the provider default applies.
	Temperature *float64
	// TopP configures nucleus sampling.
	// Nil means the provider default applies.
	TopP *float64
	// System carries an optional system prompt.
	System string
	// Extra holds provider-specific options outside the standard set.
	Extra map[string]any
}

// ParseRequestOptions extracts the standard parameters from an options map,
// falling back to defaults for missing or invalid entries.
// Unrecognized keys are collected into Extra for provider-specific handling.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		MaxTokens: ExtractOptionalInt(opts, "max_tokens", DefaultMaxTokens, IsPositiveInt),
		Model:     ExtractOptionalString(opts, "model", defaultModel, IsNonEmptyString),
		System:    ExtractOptionalString(opts, "system", "", nil),
		Extra:     make(map[string]any),
	}

	if temp := ExtractOptionalFloat64(opts, "temperature", -1, IsValidTemperature); temp != -1 {
		options.Temperature = &temp
	}

	if topP := ExtractOptionalFloat64(opts, "top_p", -1, IsValidTopP); topP != -1 {
		options.TopP = &topP
	}

	for k, v := range opts {
		switch k {
		case "max_tokens", "model", "system", "temperature", "top_p":
			// Standard options, already handled.
		default:
			options.Extra[k] = v
		}
	}

	return options
}

// ExtractOptionalInt reads an int from an options map.
// It returns defaultVal when the key is absent, holds a non-int value,
// or fails the validator.
func ExtractOptionalInt(opts map[string]any, key string, defaultVal int, validator func(int) bool) int {
	if opts == nil {
		return defaultVal
	}

	val, ok := opts[key]
	if !ok {
		return defaultVal
	}

	intVal, ok := val.(int)
	if !ok {
		return defaultVal
	}

	if validator != nil && !validator(intVal) {
		return defaultVal
	}

	return intVal
}

// ExtractOptionalString reads a string from an options map.
// It returns defaultVal when the key is absent, holds a non-string value,
// or fails the validator.
func ExtractOptionalString(opts map[string]any, key string, defaultVal string, validator func(string) bool) string {
	if opts == nil {
		return defaultVal
	}

	val, ok := opts[key]
	if !ok {
		return defaultVal
	}

	strVal, ok := val.(string)
	if !ok {
		return defaultVal
	}

	if validator != nil && !validator(strVal) {
		return defaultVal
	}

	return strVal
}

// ExtractOptionalFloat64 reads a float64 from an options map.
// It returns defaultVal when the key is absent, holds a non-float value,
// or fails the validator.
func ExtractOptionalFloat64(opts map[string]any, key string, defaultVal float64, validator func(float64) bool) float64 {
	if opts == nil {
		return defaultVal
	}

	val, ok := opts[key]
	if !ok {
		return defaultVal
	}

	floatVal, ok := val.(float64)
	if !ok {
		return defaultVal
	}

	if validator != nil && !validator(floatVal) {
		return defaultVal
	}

	return floatVal
}

// IsPositiveInt reports whether val is greater than zero.
func IsPositiveInt(val int) bool { return val > 0 }

// IsNonEmptyString reports whether val is non-empty.
func IsNonEmptyString(val string) bool { return val != "" }

// IsValidTemperature reports whether val lies in [MinTemperature, MaxTemperature].
func IsValidTemperature(val float64) bool {
	return val >= MinTemperature && val <= MaxTemperature
}

// IsValidTopP reports whether val lies in [MinTopP, MaxTopP].
func IsValidTopP(val float64) bool {
	return val >= MinTopP && val <= MaxTopP
}

// IsValidPenalty reports whether val lies in [MinPenalty, MaxPenalty].
func IsValidPenalty(val float64) bool {
	return val >= MinPenalty && val <= MaxPenalty
}

// ValidateBaseURL checks that a base URL override is an http or https URL
// with a host. An empty string is valid and selects the provider default.
func ValidateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", nil
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme == "" {
		return "", fmt.Errorf("URL must include a scheme (e.g., http:// or https://)")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https, but got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must include a host")
	}

	return parsedURL.String(), nil
}

// ValidateTimeout clamps a request timeout into [MinTimeout, MaxTimeout].
// Zero or negative values return zero, meaning the default applies.
func ValidateTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if timeout < MinTimeout {
		return MinTimeout
	}
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}

// SafeFloat32 converts a numeric value of type any to float32,
// reporting failure when the value is out of range or would lose precision.
func SafeFloat32(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		if v > 3.4e38 || v < -3.4e38 {
			return 0, false
		}
		return float32(v), true
	case int:
		return float32(v), true
	case int64:
		// 2^24 bounds the integers a float32 represents exactly.
		if v > 16777216 || v < -16777216 {
			return 0, false
		}
		return float32(v), true
	default:
		return 0, false
	}
}

// ClampFloat64 clamps val into [min, max].
func ClampFloat64(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampInt clamps val into [min, max].
func ClampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
