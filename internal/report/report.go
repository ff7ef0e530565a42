package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-scripts/apkgrab/internal/extract"
)

// Writer saves extraction results as JSON reports.
type Writer struct {
	path string
}

// New creates a Writer targeting path. Nothing touches the disk until
// Write is called.
func New(path string) *Writer {
	return &Writer{path: path}
}

// Write serializes res to the configured path, creating parent
// directories as needed.
func (w *Writer) Write(res *extract.Result) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(res); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return nil
}
