// Package config loads the harness configuration from defaults, an
// optional YAML file, and environment overrides, validating the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate checks struct tags on every loaded configuration.
var validate = validator.New()

// Config is the complete harness configuration.
type Config struct {
	// LLM selects the provider and request options for both agents.
	LLM LLMConfig `yaml:"llm"`

	// Run shapes the comparison run itself.
	Run RunConfig `yaml:"run"`

	// Voice tunes the simulated speech pipeline and quality scalars.
	Voice VoiceConfig `yaml:"voice"`

	// Budget caps run resource usage.
	Budget BudgetConfig `yaml:"budget"`

	// Cache selects the LLM response cache backend.
	Cache CacheConfig `yaml:"cache"`

	// Storage enables the run history store.
	Storage StorageConfig `yaml:"storage"`

	// Logging shapes the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics exposes the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LLMConfig selects the LLM backend shared by both agents.
type LLMConfig struct {
	// Provider names the backend. The mock provider needs no API key and
	// keeps the demo runnable offline.
	Provider string `yaml:"provider" validate:"required,oneof=mock openai anthropic google"`

	// Model overrides the provider's default model when set.
	Model string `yaml:"model"`

	// MaxTokens caps the response length requested per call.
	MaxTokens int `yaml:"max_tokens" validate:"min=1,max=100000"`

	// Temperature is the sampling temperature for both agents.
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`

	// TimeoutSeconds bounds each LLM request.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=1,max=600"`
}

// RunConfig shapes the statement set and export location.
type RunConfig struct {
	// Count limits how many statements each agent checks; 0 means all.
	Count int `yaml:"count" validate:"min=0"`

	// IncludeAmbiguous adds the uncertain statements to the dataset.
	IncludeAmbiguous bool `yaml:"include_ambiguous"`

	// DatasetPath loads statements from a YAML file instead of the
	// built-in set. IncludeAmbiguous has no effect when set.
	DatasetPath string `yaml:"dataset_path"`

	// SavePath is the directory for JSON and CSV exports.
	SavePath string `yaml:"save_path" validate:"required"`
}

// VoiceConfig tunes the simulated speech pipeline and the per-group
// interaction quality used by voice comparisons.
type VoiceConfig struct {
	// STTDelayMS is the simulated transcription delay per utterance.
	STTDelayMS int `yaml:"stt_delay_ms" validate:"min=0"`

	// TTSDelayMS is the simulated synthesis delay per reply.
	TTSDelayMS int `yaml:"tts_delay_ms" validate:"min=0"`

	// WordsPerMinute is the speaking rate used to derive audio duration.
	WordsPerMinute int `yaml:"words_per_minute" validate:"min=1"`

	// VanillaQuality and SchemaQuality are the interaction quality
	// scalars fed into the voice comparison, one per agent group.
	VanillaQuality float64 `yaml:"vanilla_quality" validate:"gte=0,lte=1"`
	SchemaQuality  float64 `yaml:"schema_quality" validate:"gte=0,lte=1"`
}

// BudgetConfig caps run resource usage. Zero means unlimited.
type BudgetConfig struct {
	// MaxTokens caps the estimated token total across both sessions.
	MaxTokens int64 `yaml:"max_tokens" validate:"min=0"`

	// MaxCalls caps the LLM-backed interactions across both sessions.
	MaxCalls int64 `yaml:"max_calls" validate:"min=0"`
}

// CacheConfig selects the LLM response cache backend.
type CacheConfig struct {
	// RedisURL switches the cache to Redis when set; empty keeps the
	// in-memory store.
	RedisURL string `yaml:"redis_url"`

	// TTLSeconds bounds a cached response's lifetime; 0 caches forever.
	TTLSeconds int `yaml:"ttl_seconds" validate:"min=0"`

	// Disabled turns response caching off entirely.
	Disabled bool `yaml:"disabled"`
}

// StorageConfig enables the run history store.
type StorageConfig struct {
	// DBPath is the SQLite file for run history; empty disables it.
	DBPath string `yaml:"db_path"`
}

// LoggingConfig shapes the structured logger.
type LoggingConfig struct {
	// Level is the minimum level to emit.
	Level string `yaml:"level" validate:"required,oneof=debug info warn error"`

	// Format selects the handler, human-readable text or JSON lines.
	Format string `yaml:"format" validate:"required,oneof=text json"`
}

// MetricsConfig exposes operational metrics.
type MetricsConfig struct {
	// Addr serves Prometheus /metrics when set, e.g. ":9090";
	// empty disables the endpoint.
	Addr string `yaml:"addr"`
}

// Default returns the configuration used before any file or environment
// overrides.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:       "mock",
			MaxTokens:      1000,
			Temperature:    0.1,
			TimeoutSeconds: 30,
		},
		Run: RunConfig{
			SavePath: "./metrics",
		},
		Voice: VoiceConfig{
			STTDelayMS:     100,
			TTSDelayMS:     200,
			WordsPerMinute: 150,
			VanillaQuality: 0.7,
			SchemaQuality:  0.9,
		},
		Cache: CacheConfig{
			TTLSeconds: 3600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults first, then the YAML file at
// path when one is given, then environment overrides, then validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}

		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Strict mode - fail on unknown fields.
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.FromEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overlays environment variables onto the configuration:
// LLM_PROVIDER, LLM_MODEL, MAX_TOKENS, TEMPERATURE, METRICS_SAVE_PATH,
// LOG_LEVEL, LOG_FORMAT, REDIS_URL, FACEOFF_DB_PATH. Provider API keys
// are read by the client registry, not here.
func (c *Config) FromEnv() error {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing MAX_TOKENS: %w", err)
		}
		c.LLM.MaxTokens = n
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing TEMPERATURE: %w", err)
		}
		c.LLM.Temperature = f
	}
	if v := os.Getenv("METRICS_SAVE_PATH"); v != "" {
		c.Run.SavePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("FACEOFF_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	return nil
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
