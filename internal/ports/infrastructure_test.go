package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// Test that our interfaces can be implemented correctly

// mockLLMClient implements LLMClient interface
type mockLLMClient struct{ model string }

func (m *mockLLMClient) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	return "mock response", nil
}

func (m *mockLLMClient) EstimateTokens(text string) (int, error) {
	// Simple estimation: ~4 characters per token
	return len(text) / 4, nil
}

func (m *mockLLMClient) GetModel() string { return m.model }

// mockCacheStore implements CacheStore interface
type mockCacheStore struct{ data map[string]any }

// newMockCacheStore creates a new mock cache store for testing.
func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{
		data: make(map[string]any),
	}
}

func (m *mockCacheStore) Get(ctx context.Context, key string) (any, bool, error) {
	val, exists := m.data[key]
	return val, exists, nil
}

func (m *mockCacheStore) Set(
	ctx context.Context,
	key string,
	value any,
	expiration time.Duration,
) error {
	m.data[key] = value
	return nil
}

func (m *mockCacheStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCacheStore) Clear(ctx context.Context) error {
	m.data = make(map[string]any)
	return nil
}

// mockMetricsCollector implements MetricsCollector interface
type mockMetricsCollector struct {
	latencies  []time.Duration
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// newMockMetricsCollector creates a new mock metrics collector for testing.
func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		latencies:  []time.Duration{},
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *mockMetricsCollector) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	m.latencies = append(m.latencies, duration)
}

func (m *mockMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	m.counters[metric] += value
}

func (m *mockMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	m.gauges[metric] = value
}

func (m *mockMetricsCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.histograms[metric] = append(m.histograms[metric], value)
}

// mockFactChecker implements FactChecker interface
type mockFactChecker struct{ name string }

func (m *mockFactChecker) Name() string { return m.name }

func (m *mockFactChecker) Check(ctx context.Context, statement domain.Statement) (domain.FactCheckResult, error) {
	return domain.CheckSuccess{
		Classification: domain.ClassificationTrue,
		Explanation:    "mock verdict",
		Confidence:     0.95,
	}, nil
}

// mockSpeechPipeline implements SpeechPipeline interface
type mockSpeechPipeline struct{}

func (m *mockSpeechPipeline) Transcribe(ctx context.Context, utterance string) (string, error) {
	return utterance, nil
}

func (m *mockSpeechPipeline) Synthesize(ctx context.Context, text string) (SpokenAudio, error) {
	return SpokenAudio{Text: text, Duration: 200 * time.Millisecond}, nil
}

// Test that interfaces are properly defined and can be implemented
func TestInterfaces_Implementation(t *testing.T) {
	// Verify mock types implement interfaces
	var _ LLMClient = (*mockLLMClient)(nil)
	var _ CacheStore = (*mockCacheStore)(nil)
	var _ MetricsCollector = (*mockMetricsCollector)(nil)
	var _ FactChecker = (*mockFactChecker)(nil)
	var _ SpeechPipeline = (*mockSpeechPipeline)(nil)

	// Test LLMClient
	llm := &mockLLMClient{model: "test-model"}
	assert.Equal(t, "test-model", llm.GetModel(), "GetModel() mismatch")

	ctx := context.Background()
	response, err := llm.Complete(ctx, "test prompt", nil)
	require.NoError(t, err, "Complete() should not return error")
	assert.Equal(t, "mock response", response, "Complete() response mismatch")

	tokens, err := llm.EstimateTokens("hello world test")
	require.NoError(t, err, "EstimateTokens() should not return error")
	assert.Greater(t, tokens, 0, "EstimateTokens() should return positive value")
}

func TestCacheStore_Operations(t *testing.T) {
	ctx := context.Background()
	cache := newMockCacheStore()

	// Test Set and Get
	err := cache.Set(ctx, "key1", "value1", time.Hour)
	require.NoError(t, err, "Set() should not return error")

	val, exists, err := cache.Get(ctx, "key1")
	require.NoError(t, err, "Get() should not return error")
	assert.True(t, exists, "Get() should find existing key")
	assert.Equal(t, "value1", val, "Get() value mismatch")

	// Test Get non-existent
	_, exists, err = cache.Get(ctx, "nonexistent")
	require.NoError(t, err, "Get() should not return error for non-existent key")
	assert.False(t, exists, "Get() should not find non-existent key")

	// Test Delete
	err = cache.Delete(ctx, "key1")
	require.NoError(t, err, "Delete() should not return error")

	_, exists, err = cache.Get(ctx, "key1")
	require.NoError(t, err, "Get() should not return error after delete")
	assert.False(t, exists, "Get() should not find deleted key")

	// Test Clear
	err = cache.Set(ctx, "key2", "value2", 0)
	require.NoError(t, err)
	err = cache.Set(ctx, "key3", "value3", 0)
	require.NoError(t, err)

	err = cache.Clear(ctx)
	require.NoError(t, err, "Clear() should not return error")

	assert.Empty(t, cache.data, "Clear() should empty the cache")
}

func TestMetricsCollector_Recording(t *testing.T) {
	metrics := newMockMetricsCollector()
	labels := map[string]string{"group": "vanilla"}

	// Test RecordLatency
	metrics.RecordLatency("check", 100*time.Millisecond, labels)
	assert.Len(t, metrics.latencies, 1, "RecordLatency() should record one duration")
	assert.Equal(t, 100*time.Millisecond, metrics.latencies[0], "RecordLatency() duration mismatch")

	// Test RecordCounter
	metrics.RecordCounter("interactions", 1, labels)
	metrics.RecordCounter("interactions", 2, labels)
	assert.Equal(t, float64(3), metrics.counters["interactions"], "RecordCounter() sum mismatch")

	// Test RecordGauge
	metrics.RecordGauge("budget_remaining", 10, labels)
	metrics.RecordGauge("budget_remaining", 5, labels)
	assert.Equal(t, float64(5), metrics.gauges["budget_remaining"], "RecordGauge() value mismatch")

	// Test RecordHistogram
	metrics.RecordHistogram("latency_seconds", 0.4, labels)
	metrics.RecordHistogram("latency_seconds", 0.8, labels)
	assert.Len(t, metrics.histograms["latency_seconds"], 2, "RecordHistogram() should record two values")
}

func TestFactChecker_Check(t *testing.T) {
	checker := &mockFactChecker{name: "vanilla"}

	result, err := checker.Check(context.Background(), domain.Statement{
		Text:     "The sun is a star.",
		Expected: domain.ClassificationTrue,
	})

	require.NoError(t, err, "Check() should not return error")
	success, ok := result.(domain.CheckSuccess)
	require.True(t, ok, "Result should be a CheckSuccess")
	assert.Equal(t, domain.ClassificationTrue, success.Classification)
	assert.Equal(t, "vanilla", checker.Name())
}

func TestSpeechPipeline_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pipeline := &mockSpeechPipeline{}

	text, err := pipeline.Transcribe(ctx, "is the sun a star")
	require.NoError(t, err, "Transcribe() should not return error")
	assert.Equal(t, "is the sun a star", text)

	audio, err := pipeline.Synthesize(ctx, "yes, the sun is a star")
	require.NoError(t, err, "Synthesize() should not return error")
	assert.Equal(t, "yes, the sun is a star", audio.Text)
	assert.Equal(t, 200*time.Millisecond, audio.Duration)
}
