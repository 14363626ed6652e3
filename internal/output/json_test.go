package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// exportRun builds a small but complete run for export tests.
func exportRun(id string) domain.RunResult {
	started := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	return domain.RunResult{
		ID:          id,
		Mode:        "text",
		Provider:    "mock",
		Model:       "mock-model",
		StartedAt:   started,
		CompletedAt: started.Add(2 * time.Second),
		Aggregates: []domain.Aggregate{
			{Group: "vanilla", AccuracyRate: 0.5, HandoffSuccessRate: 1.0, TotalCount: 2},
			{Group: "baml", AccuracyRate: 1.0, HandoffSuccessRate: 1.0, TotalCount: 2},
		},
		Verdict: domain.ComparisonVerdict{
			GroupA: "vanilla", GroupB: "baml",
			ScoreA: 0.6, ScoreB: 0.9,
			Profile: "accuracy_weighted", Winner: "baml",
		},
		Report: "Agent Performance Comparison Report",
		Records: []domain.InteractionRecord{
			{
				Group:               "vanilla",
				InputLabel:          "The sun is a star",
				LatencySeconds:      0.5,
				ResponseTimeSeconds: 0.4,
				Correct:             true,
				HandoffSucceeded:    true,
				TokenCount:          42,
				CreatedAt:           started.Add(time.Second),
			},
			{
				Group:            "baml",
				InputLabel:       "The moon is made of cheese",
				LatencySeconds:   0.3,
				Correct:          false,
				HandoffSucceeded: false,
				ErrorText:        "no json found in response",
				CreatedAt:        started.Add(2 * time.Second),
			},
		},
	}
}

// TestWriteRunJSON_RoundTrips writes a run and reads it back intact.
func TestWriteRunJSON_RoundTrips(t *testing.T) {
	// Given a run and an output directory.
	dir := t.TempDir()
	run := exportRun("json-run")

	// When the run is exported.
	path, err := WriteRunJSON(dir, run)
	require.NoError(t, err)

	// Then the file carries the run ID in its name and parses back.
	assert.Equal(t, filepath.Join(dir, "run_json-run.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got domain.RunResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Verdict, got.Verdict)
	assert.Equal(t, run.Aggregates, got.Aggregates)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "no json found in response", got.Records[1].ErrorText)
}

// TestWriteRunJSON_Indented keeps the export human-diffable.
func TestWriteRunJSON_Indented(t *testing.T) {
	path, err := WriteRunJSON(t.TempDir(), exportRun("pretty"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "\n  \"id\": \"pretty\"")
	assert.True(t, strings.HasSuffix(text, "\n"))
}

// TestWriteRunJSON_CreatesDirectory builds the save path tree as needed.
func TestWriteRunJSON_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metrics", "exports")

	path, err := WriteRunJSON(dir, exportRun("nested"))
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

// TestWriteRunJSON_EmptyID rejects runs without an identity.
func TestWriteRunJSON_EmptyID(t *testing.T) {
	_, err := WriteRunJSON(t.TempDir(), domain.RunResult{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run ID")
}
