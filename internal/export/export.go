// Package export renders todos as the downloadable JSON document.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dori/tempo/internal/model"
)

const (
	FileName  = "todos.json"
	MediaType = "application/json"
)

// Write encodes todos as an indented JSON array. A nil or empty slice
// produces "[]".
func Write(w io.Writer, todos []model.Todo) error {
	if todos == nil {
		todos = []model.Todo{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(todos); err != nil {
		return fmt.Errorf("failed to encode todos: %w", err)
	}
	return nil
}

// WriteFile writes todos to dir/todos.json and returns the path
func WriteFile(dir string, todos []model.Todo) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName)

	// Write atomically via temp file
	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := Write(tmp, todos); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename export file: %w", err)
	}
	return path, nil
}
