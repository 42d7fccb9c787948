package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"finboard/internal/config"
	"finboard/internal/exporter"
	"finboard/internal/infrastructure"
	"finboard/internal/services"
	"finboard/internal/validation"
)

func main() {
	dataDir := flag.String("data", "", "directory containing the source workbooks (defaults to the configured data dir)")
	outputDir := flag.String("out", "", "output directory for report files (defaults to the configured reports dir)")
	monthColumn := flag.String("month", "", "month column of the performance workbook (defaults to the configured column)")
	pretty := flag.Bool("pretty", false, "indent JSON report output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// A trace ID ties this run's log lines together the same way a
	// request ID does on the server.
	ctx := infrastructure.EnsureTraceID(context.Background())
	logger := infrastructure.LoggerWithContext(ctx)

	// Flag overrides apply before directories are created so reports
	// land where the caller asked.
	if *dataDir != "" {
		abs, err := filepath.Abs(*dataDir)
		if err != nil {
			infrastructure.WithError(logger, err).Error("Failed to resolve data directory")
			os.Exit(1)
		}
		cfg.Paths.DataDir = abs
	}
	if *outputDir != "" {
		abs, err := filepath.Abs(*outputDir)
		if err != nil {
			infrastructure.WithError(logger, err).Error("Failed to resolve output directory")
			os.Exit(1)
		}
		cfg.Paths.ReportsDir = abs
	}
	if *monthColumn != "" {
		cfg.Dashboard.MonthColumn = *monthColumn
	}

	// Preflight the local workbooks so a misconfigured path fails with
	// a clear message. Upstream mode fetches over HTTP instead, so the
	// load itself reports those failures.
	validator := validation.NewFileValidator(logger)
	if cfg.Dashboard.UpstreamURL == "" {
		if err := validator.ValidateDataDirectory(cfg.GetDataDir()); err != nil {
			infrastructure.WithError(logger, err).Error("Data directory validation failed")
			os.Exit(1)
		}
		for _, name := range []string{cfg.Dashboard.ExpenseResource, cfg.Dashboard.PerformanceResource} {
			if err := validator.ValidateWorkbook(filepath.Join(cfg.GetDataDir(), name)); err != nil {
				infrastructure.WithError(logger, err).Error("Workbook validation failed")
				os.Exit(1)
			}
		}
	}
	if err := validator.ValidateOutputDirectory(cfg.GetReportsDir()); err != nil {
		infrastructure.WithError(logger, err).Error("Output directory validation failed")
		os.Exit(1)
	}

	service := services.NewDashboardServiceWithLogger(cfg, logger)
	defer service.Close()

	logger.Info("Building dashboard views",
		"data_dir", cfg.GetDataDir(),
		"reports_dir", cfg.GetReportsDir())

	// Both workbooks load concurrently; the first failure cancels the
	// other load and decides the exit message.
	slugs := []string{config.ExpenseDashboardSlug, config.PerformanceDashboardSlug}
	views := make([]*services.DashboardView, len(slugs))

	g, gctx := errgroup.WithContext(ctx)
	for i, slug := range slugs {
		g.Go(func() error {
			view, err := service.BuildView(gctx, slug)
			if err != nil {
				return err
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		infrastructure.WithError(logger, err).Error("Failed to build dashboard views")
		os.Exit(1)
	}

	for _, view := range views {
		logger.Info("Built dashboard view",
			"dashboard", view.Slug,
			"rows", view.RowCount,
			"load_id", view.LoadID)
	}

	reportExporter := exporter.NewReportExporter(cfg.Paths, logger)
	written, err := reportExporter.ExportAll(views, *pretty)
	if err != nil {
		infrastructure.WithError(logger, err).Error("Failed to export reports")
		os.Exit(1)
	}

	for _, path := range written {
		logger.Info("Wrote report", "path", path)
	}
	logger.Info("Report generation complete", "files", len(written))
}
