// Package exporter writes dashboard views to the reports directory.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with headers and a UTF-8
// BOM for Excel compatibility.
//
// ReportExporter: Generates the report artifacts for a set of dashboard
// views: one counts CSV and one view JSON per dashboard, plus a
// combined summary workbook with the formatted tables.
//
// Example usage:
//
//	exporter := exporter.NewReportExporter(cfg.Paths, logger)
//
//	paths, err := exporter.ExportAll(views, true)
//	if err != nil {
//	    return err
//	}
package exporter
