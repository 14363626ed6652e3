// Package output writes completed runs to disk for later analysis.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ahrav/go-faceoff/internal/domain"
)

// WriteRunJSON writes the full run, indented for human diffing, to
// <dir>/run_<id>.json and returns the written path. The directory is
// created as needed and an existing export for the same run is replaced.
func WriteRunJSON(dir string, run domain.RunResult) (string, error) {
	if run.ID == "" {
		return "", errors.New("run ID must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling run %s: %w", run.ID, err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, fmt.Sprintf("run_%s.json", run.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run %s: %w", run.ID, err)
	}
	return path, nil
}
