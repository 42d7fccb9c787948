package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application directories.
// This is the single source of truth for ALL file paths in the application.
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	LogsDir       string
}

// ResolvePaths resolves the configured directories against the executable
// location. Absolute entries are kept as-is; relative entries are joined
// to the executable directory, never the current working directory, so
// the binaries behave the same whether run from a shell or a service
// manager.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	exeDir := cfg.ExecutableDir
	if exeDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}

		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}

		exeDir = filepath.Dir(exe)
	}

	resolve := func(dir string) string {
		if dir == "" || filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(exeDir, dir)
	}

	// Directory layout:
	//   <exe dir>/
	//     ├── data/              (xlsx workbooks served to dashboards)
	//     │   └── reports/       (generated CSV/JSON/xlsx summaries)
	//     ├── logs/              (application logs)
	//     └── finboard.yaml      (optional config file)
	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       resolve(cfg.DataDir),
		ReportsDir:    resolve(cfg.ReportsDir),
		LogsDir:       resolve(cfg.LogsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ReportsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// WorkbookPath returns the path of a workbook resource inside the data
// directory. The resource name is flattened to its base name so request
// paths cannot escape the directory.
func (p *Paths) WorkbookPath(resource string) string {
	return filepath.Join(p.DataDir, filepath.Base(resource))
}

// ReportPath returns the path for a generated report file.
func (p *Paths) ReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filepath.Base(filename))
}

// LogPath returns the path for a log file.
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filepath.Base(filename))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved directories for debugging. Load
// calls this before the application logger exists, so it goes through
// the default logger at debug level.
func (p *Paths) LogPathResolution() {
	slog.Default().Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		))
}
