// Package fileutil writes command output to disk.
package fileutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// FileExists reports whether a regular file exists at filePath.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteFileWithOverwrite writes data to filePath, creating parent directories.
// An existing file is left untouched unless overwrite is set. Reports whether
// the file was written.
func WriteFileWithOverwrite(filePath string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(filePath) && !overwrite {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, perm); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return true, nil
}

// MarshalJSON renders v as indented JSON with a trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSONFile writes v as indented JSON, respecting overwrite.
func WriteJSONFile(v any, filePath string, overwrite bool) (bool, error) {
	data, err := MarshalJSON(v)
	if err != nil {
		return false, err
	}

	written, err := WriteFileWithOverwrite(filePath, data, 0o644, overwrite)
	if err != nil {
		return false, err
	}
	if !written {
		slog.Info("JSON file already exists, skipping", "filename", filePath)
		return false, nil
	}
	slog.Info("Wrote JSON file", "filename", filePath)
	return true, nil
}
