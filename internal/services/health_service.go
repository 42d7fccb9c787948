package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"finboard/internal/config"
	"finboard/internal/infrastructure"
)

// HealthService answers the health, readiness and liveness probes. It
// checks the things the dashboards actually depend on: the data
// directory, the configured workbook resources and the report output
// directory.
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	paths     config.PathsConfig
	dashboard config.DashboardConfig
	collector *infrastructure.SystemMetricsCollector
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	TotalFiles     int     `json:"total_files"`
	TotalSizeBytes int64   `json:"total_size_bytes"`
	Workbooks      int     `json:"workbooks"`
	GoVersion      string  `json:"go_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
}

// NewHealthService creates a health service with default build information.
func NewHealthService(version string, paths config.PathsConfig, dashboard config.DashboardConfig, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", paths, dashboard, nil, logger)
}

// NewHealthServiceWithBuildInfo creates a health service with build
// information and an optional system metrics collector.
func NewHealthServiceWithBuildInfo(version, buildTime, buildID string, paths config.PathsConfig, dashboard config.DashboardConfig, collector *infrastructure.SystemMetricsCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID),
		slog.String("data_dir", paths.DataDir))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		paths:     paths,
		dashboard: dashboard,
		collector: collector,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.Debug("HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status. The service is ready when the
// data directory and both configured workbooks are present and the
// report directory is writable.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["data"] = hs.checkDataHealth()
	status.Services["resources"] = hs.checkResourceHealth()
	status.Services["reports"] = hs.checkReportsHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	dataDir := hs.paths.DataDir

	var totalFiles int
	var totalSize int64

	filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			totalFiles++
			totalSize += info.Size()
		}
		return nil
	})

	workbooks := 0
	for _, resource := range hs.resources() {
		if _, err := os.Stat(filepath.Join(dataDir, resource)); err == nil {
			workbooks++
		}
	}

	return SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		TotalFiles:     totalFiles,
		TotalSizeBytes: totalSize,
		Workbooks:      workbooks,
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}, nil
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	stats, _ := hs.SystemStats(ctx)

	detail := map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     stats,
	}

	if hs.collector != nil {
		if current := hs.collector.GetCurrentStats(ctx); current != nil {
			detail["runtime"] = current.FormatStats()
		}
	}

	return detail
}

// resources lists the configured workbook file names.
func (hs *HealthService) resources() []string {
	return []string{hs.dashboard.ExpenseResource, hs.dashboard.PerformanceResource}
}

// checkDataHealth verifies the workbook directory exists and is readable.
func (hs *HealthService) checkDataHealth() ServiceHealth {
	dataDir := hs.paths.DataDir
	if _, err := os.Stat(dataDir); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data directory not accessible: %v", err),
		}
	}
	if _, err := os.ReadDir(dataDir); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Cannot read data directory: %v", err),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "Data directory is accessible",
	}
}

// checkResourceHealth verifies every configured workbook is present.
// When workbooks come from an upstream URL the local check is skipped.
func (hs *HealthService) checkResourceHealth() ServiceHealth {
	if hs.dashboard.UpstreamURL != "" {
		return ServiceHealth{
			Status:  "ready",
			Message: fmt.Sprintf("Workbooks fetched from %s", hs.dashboard.UpstreamURL),
		}
	}

	for _, resource := range hs.resources() {
		if _, err := os.Stat(filepath.Join(hs.paths.DataDir, resource)); err != nil {
			return ServiceHealth{
				Status:  "not_ready",
				Message: fmt.Sprintf("Workbook not found: %s", resource),
			}
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "All workbook resources are present",
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// checkReportsHealth verifies the report output directory is writable.
func (hs *HealthService) checkReportsHealth() ServiceHealth {
	if err := os.MkdirAll(hs.paths.ReportsDir, 0o755); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Cannot create reports directory: %v", err),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "Reports directory is writable",
	}
}
