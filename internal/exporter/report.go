package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"finboard/internal/config"
	"finboard/internal/files"
	"finboard/internal/services"
)

// summaryWorkbookName is the combined workbook written next to the
// per-dashboard artifacts.
const summaryWorkbookName = "summary.xlsx"

// ReportExporter writes dashboard views to the reports directory as
// CSV, JSON and xlsx artifacts. It is the offline counterpart of the
// web dashboards, run by the report command.
type ReportExporter struct {
	csvWriter *CSVWriter
	files     *files.Manager
	logger    *slog.Logger
}

// NewReportExporter creates a report exporter over the configured paths.
func NewReportExporter(paths config.PathsConfig, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		csvWriter: NewCSVWriter(paths),
		files:     files.NewManager(paths),
		logger:    logger.With(slog.String("component", "report_exporter")),
	}
}

// ExportAll writes every artifact for the given views: one counts CSV
// and one view JSON per dashboard, plus the combined summary workbook.
// Returns the paths written, in write order.
func (e *ReportExporter) ExportAll(views []*services.DashboardView, pretty bool) ([]string, error) {
	paths := make([]string, 0, 2*len(views)+1)

	for _, view := range views {
		countsPath, err := e.ExportCounts(view)
		if err != nil {
			return nil, err
		}
		paths = append(paths, countsPath)

		jsonPath, err := e.ExportViewJSON(view, pretty)
		if err != nil {
			return nil, err
		}
		paths = append(paths, jsonPath)
	}

	workbookPath, err := e.ExportSummaryWorkbook(views)
	if err != nil {
		return nil, err
	}
	return append(paths, workbookPath), nil
}

// ExportCounts writes the ordered count map of one view as
// counts_<slug>.csv. The header names the tallied column.
func (e *ReportExporter) ExportCounts(view *services.DashboardView) (string, error) {
	var records [][]string
	if view.Counts != nil {
		records = make([][]string, 0, view.Counts.Len())
		for _, entry := range view.Counts.Entries() {
			records = append(records, []string{entry.Value, strconv.Itoa(entry.Count)})
		}
	}

	name := fmt.Sprintf("counts_%s.csv", view.Slug)
	if err := e.csvWriter.WriteSimpleCSV(name, []string{view.ChartField, "Count"}, records); err != nil {
		return "", fmt.Errorf("write counts for %s: %w", view.Slug, err)
	}

	path := e.files.ResolvePath("reports/" + name)
	e.logger.Info("counts exported",
		slog.String("dashboard", view.Slug),
		slog.String("path", path),
		slog.Int("categories", len(records)))
	return path, nil
}

// ExportViewJSON writes the full view as dashboard_<slug>.json.
func (e *ReportExporter) ExportViewJSON(view *services.DashboardView, pretty bool) (string, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(view, "", "  ")
	} else {
		data, err = json.Marshal(view)
	}
	if err != nil {
		return "", fmt.Errorf("marshal view %s: %w", view.Slug, err)
	}
	data = append(data, '\n')

	rel := fmt.Sprintf("reports/dashboard_%s.json", view.Slug)
	if err := e.files.WriteFile(rel, data); err != nil {
		return "", fmt.Errorf("write view json for %s: %w", view.Slug, err)
	}

	path := e.files.ResolvePath(rel)
	e.logger.Info("view json exported",
		slog.String("dashboard", view.Slug),
		slog.String("path", path),
		slog.Int("size_bytes", len(data)))
	return path, nil
}

// ExportSummaryWorkbook writes one workbook with a sheet per view,
// each holding the view header, the summary cards and the formatted
// tables.
func (e *ReportExporter) ExportSummaryWorkbook(views []*services.DashboardView) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, view := range views {
		sheet := sheetName(view.Title)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return "", fmt.Errorf("name sheet %s: %w", sheet, err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return "", fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}
		if err := writeSheet(f, sheet, view); err != nil {
			return "", fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}

	if err := e.files.EnsureDirectory("reports/"); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}
	path := e.files.ResolvePath("reports/" + summaryWorkbookName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save summary workbook: %w", err)
	}

	e.logger.Info("summary workbook exported",
		slog.String("path", path),
		slog.Int("sheets", len(views)))
	return path, nil
}

// writeSheet lays out one view on a sheet: a metadata header, the
// summary cards, then each table with its title and column row.
func writeSheet(f *excelize.File, sheet string, view *services.DashboardView) error {
	row := 1
	set := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	header := [][]interface{}{
		{view.Title},
		{"Resource", view.Resource},
		{"Load ID", view.LoadID},
		{"Loaded At", view.LoadedAt.Format(time.RFC3339)},
		{"Rows", view.RowCount},
	}
	for _, values := range header {
		if err := set(values); err != nil {
			return err
		}
	}
	row++

	for _, card := range view.Summary {
		if err := set([]interface{}{card.Label, card.Value}); err != nil {
			return err
		}
	}
	if len(view.Summary) > 0 {
		row++
	}

	for _, table := range view.Tables {
		if err := set([]interface{}{table.Title}); err != nil {
			return err
		}
		columns := make([]interface{}, len(table.Columns))
		for i, column := range table.Columns {
			columns[i] = column
		}
		if err := set(columns); err != nil {
			return err
		}
		for _, cells := range table.Rows {
			values := make([]interface{}, len(cells))
			for i, cell := range cells {
				values[i] = cell
			}
			if err := set(values); err != nil {
				return err
			}
		}
		row++
	}

	return nil
}

// sheetName truncates a title to the 31-character Excel sheet limit.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
