package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"finboard/internal/dataprocessing"
)

// Resource kinds reported by the inventory.
const (
	KindWorkbook = "workbook"
	KindReport   = "report"
)

// ResourceInfo describes one file in the resource inventory.
type ResourceInfo struct {
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	SizeBytes   int64     `json:"size_bytes"`
	Modified    time.Time `json:"modified"`
	Fingerprint string    `json:"fingerprint,omitempty"`
}

// Discovery inventories the workbooks the dashboards read and the
// report files the exporter writes.
type Discovery struct {
	dataDir    string
	reportsDir string
	logger     *slog.Logger
}

// NewDiscovery creates a discovery over the data and reports directories.
func NewDiscovery(dataDir, reportsDir string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		dataDir:    dataDir,
		reportsDir: reportsDir,
		logger:     logger,
	}
}

// Workbooks lists the Excel workbooks in the data directory, sorted by
// name. Each entry carries the same content fingerprint the dashboard
// views report, so clients can tell whether a dashboard reflects the
// file currently on disk.
func (d *Discovery) Workbooks(ctx context.Context) ([]ResourceInfo, error) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data directory %s: %w", d.dataDir, err)
	}

	resources := make([]ResourceInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isWorkbook(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		resource := ResourceInfo{
			Name:      entry.Name(),
			Kind:      KindWorkbook,
			SizeBytes: info.Size(),
			Modified:  info.ModTime(),
		}
		if data, err := os.ReadFile(filepath.Join(d.dataDir, entry.Name())); err == nil {
			resource.Fingerprint = dataprocessing.Fingerprint(data)
		} else {
			d.logger.WarnContext(ctx, "workbook fingerprint skipped",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()))
		}
		resources = append(resources, resource)
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Name < resources[j].Name
	})
	return resources, nil
}

// Reports lists the generated report files, newest first. A missing
// reports directory means nothing has been exported yet and is not an
// error.
func (d *Discovery) Reports(ctx context.Context) ([]ResourceInfo, error) {
	entries, err := os.ReadDir(d.reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ResourceInfo{}, nil
		}
		return nil, fmt.Errorf("read reports directory %s: %w", d.reportsDir, err)
	}

	resources := make([]ResourceInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isReport(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		resources = append(resources, ResourceInfo{
			Name:      entry.Name(),
			Kind:      KindReport,
			SizeBytes: info.Size(),
			Modified:  info.ModTime(),
		})
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Modified.After(resources[j].Modified)
	})
	return resources, nil
}

// Latest returns the most recently modified entry, false when the list
// is empty. The inventory handler derives its Last-Modified header
// from it.
func Latest(resources []ResourceInfo) (ResourceInfo, bool) {
	if len(resources) == 0 {
		return ResourceInfo{}, false
	}

	latest := resources[0]
	for _, resource := range resources[1:] {
		if resource.Modified.After(latest.Modified) {
			latest = resource
		}
	}
	return latest, true
}

func isWorkbook(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}

func isReport(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".csv") ||
		strings.HasSuffix(lower, ".json") ||
		strings.HasSuffix(lower, ".xlsx")
}
