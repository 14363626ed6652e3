package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// csvHeader is the fixed column layout for record exports.
var csvHeader = []string{
	"group", "input", "latency_seconds", "response_time_seconds",
	"correct", "handoff_succeeded", "token_count", "error", "created_at",
}

// CSVWriter streams interaction records to a CSV file. Writes are
// mutex-guarded and flushed immediately, so concurrent sessions can
// stream rows and an interrupted run still leaves a readable file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates the file at path, truncating any previous export,
// and writes the header row.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating CSV file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one record row. It is safe for concurrent use.
func (cw *CSVWriter) Write(record domain.InteractionRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	row := []string{
		record.Group,
		record.InputLabel,
		strconv.FormatFloat(record.LatencySeconds, 'f', 4, 64),
		strconv.FormatFloat(record.ResponseTimeSeconds, 'f', 4, 64),
		strconv.FormatBool(record.Correct),
		strconv.FormatBool(record.HandoffSucceeded),
		strconv.Itoa(record.TokenCount),
		record.ErrorText,
		record.CreatedAt.Format(time.RFC3339),
	}

	if err := cw.writer.Write(row); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// WriteAll appends every record in order.
func (cw *CSVWriter) WriteAll(records []domain.InteractionRecord) error {
	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes pending rows and closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return err
	}
	return cw.file.Close()
}

// WriteRunCSV exports a run's interaction log to <dir>/run_<id>.csv and
// returns the written path. The directory is created as needed.
func WriteRunCSV(dir string, run domain.RunResult) (string, error) {
	if run.ID == "" {
		return "", errors.New("run ID must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s.csv", run.ID))
	writer, err := NewCSVWriter(path)
	if err != nil {
		return "", err
	}

	if err := writer.WriteAll(run.Records); err != nil {
		writer.Close()
		return "", fmt.Errorf("writing records for run %s: %w", run.ID, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing export for run %s: %w", run.ID, err)
	}
	return path, nil
}
