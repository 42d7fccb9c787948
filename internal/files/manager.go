package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"finboard/internal/config"
)

// Manager provides path-aware file operations over the configured
// directories. Relative paths resolve against the data directory unless
// prefixed with "reports/" or "logs/".
type Manager struct {
	paths config.PathsConfig
}

// NewManager creates a new file manager instance.
func NewManager(paths config.PathsConfig) *Manager {
	return &Manager{paths: paths}
}

// FileExists checks if a file exists at the given path.
func (m *Manager) FileExists(path string) bool {
	fullPath := m.ResolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// ReadFile reads the entire content of a file.
func (m *Manager) ReadFile(path string) ([]byte, error) {
	fullPath := m.ResolvePath(path)

	slog.Debug("Reading file",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return os.ReadFile(fullPath)
}

// WriteFile writes data to a file, creating parent directories as needed.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.ResolvePath(path)

	slog.Info("Writing file",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Int("size_bytes", len(data)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(fullPath, data, 0o644)
}

// GetFileSize returns the size of a file in bytes.
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(m.ResolvePath(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ListFiles returns all file names in a directory (non-recursive).
func (m *Manager) ListFiles(dir string) ([]string, error) {
	fullPath := m.ResolvePath(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.ResolvePath(path)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return os.MkdirAll(fullPath, 0o755)
	}
	return nil
}

// ResolvePath resolves a path relative to the appropriate configured
// directory. Absolute paths pass through unchanged.
func (m *Manager) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "reports/"):
		return filepath.Join(m.paths.ReportsDir, strings.TrimPrefix(path, "reports/"))
	case strings.HasPrefix(path, "logs/"):
		return filepath.Join(m.paths.LogsDir, strings.TrimPrefix(path, "logs/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
