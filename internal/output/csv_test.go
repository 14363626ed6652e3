package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// readCSV parses an exported file back into rows.
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

// TestCSVWriter_HeaderAndRows verifies the fixed header and row layout.
func TestCSVWriter_HeaderAndRows(t *testing.T) {
	// Given a writer and one successful and one failed record.
	path := filepath.Join(t.TempDir(), "records.csv")
	writer, err := NewCSVWriter(path)
	require.NoError(t, err)

	created := time.Date(2026, time.March, 14, 9, 0, 1, 0, time.UTC)
	require.NoError(t, writer.Write(domain.InteractionRecord{
		Group:               "vanilla",
		InputLabel:          "The sun is a star",
		LatencySeconds:      0.5,
		ResponseTimeSeconds: 0.4,
		Correct:             true,
		HandoffSucceeded:    true,
		TokenCount:          42,
		CreatedAt:           created,
	}))
	require.NoError(t, writer.Write(domain.InteractionRecord{
		Group:          "baml",
		InputLabel:     "The moon is made of cheese",
		LatencySeconds: 0.25,
		ErrorText:      "no json found in response",
		CreatedAt:      created.Add(time.Second),
	}))
	require.NoError(t, writer.Close())

	// Then the file holds the header plus both rows in order.
	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	assert.Equal(t, []string{
		"vanilla", "The sun is a star", "0.5000", "0.4000",
		"true", "true", "42", "", "2026-03-14T09:00:01Z",
	}, rows[1])

	assert.Equal(t, "baml", rows[2][0])
	assert.Equal(t, "false", rows[2][4])
	assert.Equal(t, "false", rows[2][5])
	assert.Equal(t, "0", rows[2][6])
	assert.Equal(t, "no json found in response", rows[2][7])
}

// TestCSVWriter_ConcurrentWrites streams rows from several goroutines
// without losing or interleaving any.
func TestCSVWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.csv")
	writer, err := NewCSVWriter(path)
	require.NoError(t, err)

	const workers = 10
	const perWorker = 5

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				record := domain.InteractionRecord{
					Group:      "vanilla",
					InputLabel: fmt.Sprintf("statement %d-%d", w, i),
					CreatedAt:  time.Now(),
				}
				assert.NoError(t, writer.Write(record))
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, writer.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 1+workers*perWorker)
	for _, row := range rows {
		assert.Len(t, row, len(csvHeader))
	}
}

// TestWriteRunCSV exports a whole run's log in one call.
func TestWriteRunCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "metrics")
	run := exportRun("csv-run")

	path, err := WriteRunCSV(dir, run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run_csv-run.csv"), path)

	rows := readCSV(t, path)
	require.Len(t, rows, 1+len(run.Records))
	assert.Equal(t, "The moon is made of cheese", rows[2][1])
}

// TestWriteRunCSV_NoRecords still writes the header.
func TestWriteRunCSV_NoRecords(t *testing.T) {
	run := exportRun("empty-run")
	run.Records = nil

	path, err := WriteRunCSV(t.TempDir(), run)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

// TestWriteRunCSV_EmptyID rejects runs without an identity.
func TestWriteRunCSV_EmptyID(t *testing.T) {
	_, err := WriteRunCSV(t.TempDir(), domain.RunResult{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run ID")
}
