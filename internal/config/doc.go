// Package config provides centralized configuration management for the
// FinBoard binaries. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of
// precedence:
//
//	1. Environment variables (highest priority)
//	2. finboard.yaml configuration file
//	3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FINBOARD_* for
// namespacing:
//
//	FINBOARD_SERVER_PORT=8080
//	FINBOARD_LOGGING_LEVEL=info
//	FINBOARD_DASHBOARD_MONTH_COLUMN="Jul 2025"
//	FINBOARD_DASHBOARD_UPSTREAM_URL=https://reports.example.com/finance
//
// List values such as FINBOARD_DASHBOARD_ALERT_PRIORITIES are
// comma-separated.
//
// # Path Management
//
// The package resolves all file system paths relative to the executable
// location, never the working directory:
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	workbook := paths.WorkbookPath("expense-analysis.xlsx")
//	report := paths.ReportPath("expense-counts.csv")
//
// # Validation
//
// All configuration is validated at load time with struct rules covering
// port ranges, timeout positivity, log level names, and the dashboard
// label lists. An invalid configuration fails startup rather than
// surfacing later as a broken dashboard.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
