package dataset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-faceoff/internal/domain"
)

var validate = validator.New()

// statementFile is the on-disk catalog format.
type statementFile struct {
	Statements []domain.Statement `yaml:"statements" validate:"required,min=1,dive"`
}

// Load reads a statement catalog from a YAML file. Decoding is strict so
// a typoed field fails loudly instead of being silently dropped, and every
// statement is validated before the catalog is returned.
func Load(path string) ([]domain.Statement, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML statement catalog.
func Parse(data []byte) ([]domain.Statement, error) {
	var file statementFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("dataset validation failed: %w", err)
	}
	return file.Statements, nil
}

// Write emits a statement catalog as YAML, creating parent directories as
// needed. Writing the Default catalog gives users a starter file to edit.
func Write(path string, statements []domain.Statement) error {
	if len(statements) == 0 {
		return fmt.Errorf("refusing to write an empty dataset")
	}

	data, err := yaml.Marshal(statementFile{Statements: statements})
	if err != nil {
		return fmt.Errorf("YAML encode failed: %w", err)
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}
	if err := os.WriteFile(cleanPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	return nil
}
