// Package files provides file system operations over the FinBoard
// directories.
//
// This package contains two main components:
//
// Discovery: Inventories the workbook files the dashboards load and the
// report files the exporter produces, including sizes, modification
// times and workbook content fingerprints. The resource API endpoint is
// built on it.
//
// Manager: Provides basic file operations (existence checks, reads,
// writes, listings) with relative paths resolved against the configured
// data, reports and logs directories.
//
// Example usage:
//
//	discovery := files.NewDiscovery(cfg.GetDataDir(), cfg.GetReportsDir(), logger)
//	workbooks, err := discovery.Workbooks(ctx)
//
//	manager := files.NewManager(cfg.Paths)
//	if manager.FileExists("expense-analysis.xlsx") {
//	    // Serve the workbook
//	}
package files
