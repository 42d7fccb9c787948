package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"finboard/internal/chart"
	"finboard/internal/config"
	"finboard/internal/dataprocessing"
	"finboard/internal/format"
	"finboard/internal/infrastructure"
	"finboard/pkg/contracts/domain"
)

// Dashboard describes one configured dashboard page: the workbook that
// backs it, the schema used to decode it, and the column the bar chart
// tallies.
type Dashboard struct {
	Slug       string
	Title      string
	Resource   string
	Schema     domain.Schema
	ChartField string
	ChartTitle string
	Stats      []dataprocessing.StatSpec
}

// DashboardInfo is one entry of the dashboard listing.
type DashboardInfo struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Resource string `json:"resource"`
	Path     string `json:"path"`
}

// Table is one rendered dashboard table: formatted cells in schema
// column order.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// SummaryCard is one formatted stat card shown above the tables.
type SummaryCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DashboardView is the render-ready result of one full pipeline run.
// Cells are already formatted; the template and the JSON API serve it
// without further processing.
type DashboardView struct {
	Slug          string           `json:"slug"`
	Title         string           `json:"title"`
	Resource      string           `json:"resource"`
	SchemaName    string           `json:"schema_name"`
	SchemaVersion string           `json:"schema_version"`
	LoadID        string           `json:"load_id"`
	Fingerprint   string           `json:"fingerprint"`
	LoadedAt      time.Time        `json:"loaded_at"`
	RowCount      int              `json:"row_count"`
	Summary       []SummaryCard    `json:"summary"`
	Tables        []Table          `json:"tables"`
	ChartField    string           `json:"chart_field"`
	ChartTitle    string           `json:"chart_title"`
	Counts        *domain.CountMap `json:"counts"`
	ChartVersion  string           `json:"chart_version,omitempty"`
	HasChart      bool             `json:"has_chart"`
}

// DashboardService runs the load pipeline and assembles dashboard views.
// Every BuildView call re-runs the whole pipeline; no dataset survives
// between requests. The only state the service owns is one chart
// renderer per dashboard.
type DashboardService struct {
	config     *config.Config
	loader     *dataprocessing.Loader
	metrics    *infrastructure.DashboardMetrics
	logger     *slog.Logger
	dashboards []Dashboard
	renderers  map[string]*chart.Renderer
}

// NewDashboardService creates a dashboard service using the default logger.
func NewDashboardService(cfg *config.Config) *DashboardService {
	return NewDashboardServiceWithLogger(cfg, slog.Default())
}

// NewDashboardServiceWithLogger creates a dashboard service with a
// specific logger and no metrics.
func NewDashboardServiceWithLogger(cfg *config.Config, logger *slog.Logger) *DashboardService {
	return NewDashboardServiceWithMetrics(cfg, logger, nil)
}

// NewDashboardServiceWithMetrics creates a fully wired dashboard service.
// A nil metrics value disables metric recording.
func NewDashboardServiceWithMetrics(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	var fetcher dataprocessing.Fetcher
	if cfg.Dashboard.UpstreamURL != "" {
		fetcher = dataprocessing.NewHTTPFetcher(cfg.Dashboard.UpstreamURL, &http.Client{Timeout: cfg.Dashboard.FetchTimeout})
		logger.Info("DashboardService fetching workbooks from upstream",
			slog.String("upstream_url", cfg.Dashboard.UpstreamURL))
	} else {
		fetcher = dataprocessing.NewFileFetcher(cfg.GetDataDir())
		logger.Info("DashboardService reading workbooks from data directory",
			slog.String("data_dir", cfg.GetDataDir()))
	}

	dashboards := buildDashboards(cfg)
	renderers := make(map[string]*chart.Renderer, len(dashboards))
	for _, d := range dashboards {
		renderers[d.Slug] = chart.NewRenderer(chart.Config{Logger: logger})
	}

	return &DashboardService{
		config:     cfg,
		loader:     dataprocessing.NewLoader(fetcher, logger),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "dashboard_service")),
		dashboards: dashboards,
		renderers:  renderers,
	}
}

// buildDashboards derives the dashboard definitions from configuration.
// The month column of the performance workbook is a config value because
// exports rename it between revisions.
func buildDashboards(cfg *config.Config) []Dashboard {
	month := cfg.Dashboard.MonthColumn
	if month == "" {
		month = domain.DefaultMonthColumn
	}

	return []Dashboard{
		{
			Slug:       config.ExpenseDashboardSlug,
			Title:      "Expense Analysis",
			Resource:   cfg.Dashboard.ExpenseResource,
			Schema:     domain.ExpenseAnalysisSchema(),
			ChartField: domain.ColumnCategory,
			ChartTitle: "Rows by Category",
			Stats: []dataprocessing.StatSpec{
				{Label: "Total 2024 (Jan-Jul)", Column: domain.ColumnValue2024, Op: dataprocessing.StatSum, Role: domain.RoleCurrency},
				{Label: "Total 2025 (Jan-Jul)", Column: domain.ColumnValue2025, Op: dataprocessing.StatSum, Role: domain.RoleCurrency},
				{Label: "Mean Growth Rate", Column: domain.ColumnGrowthRate, Op: dataprocessing.StatMean, Role: domain.RolePercent},
			},
		},
		{
			Slug:       config.PerformanceDashboardSlug,
			Title:      "Financial Performance",
			Resource:   cfg.Dashboard.PerformanceResource,
			Schema:     domain.FinancialPerformanceSchema(month),
			ChartField: domain.ColumnMarginRisk,
			ChartTitle: "Margin Risk Assessment",
			Stats: []dataprocessing.StatSpec{
				{Label: fmt.Sprintf("Total Spend (%s)", month), Column: month, Op: dataprocessing.StatSum, Role: domain.RoleCurrency},
				{Label: "Mean Marketing Spend Efficiency", Column: domain.ColumnMarketingEfficiency, Op: dataprocessing.StatMean, Role: domain.RolePercent},
			},
		},
	}
}

// Dashboards lists the configured dashboards in display order.
func (s *DashboardService) Dashboards() []DashboardInfo {
	infos := make([]DashboardInfo, 0, len(s.dashboards))
	for _, d := range s.dashboards {
		infos = append(infos, DashboardInfo{
			Slug:     d.Slug,
			Title:    d.Title,
			Resource: d.Resource,
			Path:     "/dashboards/" + d.Slug,
		})
	}
	return infos
}

// Dashboard returns the definition for a slug.
func (s *DashboardService) Dashboard(slug string) (*Dashboard, error) {
	for i := range s.dashboards {
		if s.dashboards[i].Slug == slug {
			return &s.dashboards[i], nil
		}
	}
	return nil, ErrDashboardNotFound
}

// BuildView runs the full pipeline for one dashboard: fetch, decode,
// normalize, filter or sort, aggregate, summarize, format and render the
// chart. A load failure returns the loader's single error and leaves the
// previous chart handle untouched; no partial view is ever produced.
func (s *DashboardService) BuildView(ctx context.Context, slug string) (*DashboardView, error) {
	d, err := s.Dashboard(slug)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	dataset, err := s.loader.Load(ctx, d.Resource, d.Schema)
	if err != nil {
		infrastructure.RecordDashboardLoadMetrics(ctx, s.metrics, d.Slug, time.Since(start), 0, err)
		s.logger.ErrorContext(ctx, "dashboard load failed",
			slog.String("dashboard", d.Slug),
			slog.String("resource", d.Resource),
			slog.String("error", err.Error()))
		return nil, err
	}

	counts := dataprocessing.CountBy(dataset.Rows, d.ChartField)

	view := &DashboardView{
		Slug:          d.Slug,
		Title:         d.Title,
		Resource:      dataset.Resource,
		SchemaName:    dataset.SchemaName,
		SchemaVersion: dataset.SchemaVersion,
		LoadID:        dataset.LoadID,
		Fingerprint:   dataset.Fingerprint,
		LoadedAt:      dataset.LoadedAt,
		RowCount:      dataset.RowCount(),
		Summary:       buildSummary(dataset.Rows, d.Stats),
		Tables:        s.buildTables(d, dataset),
		ChartField:    d.ChartField,
		ChartTitle:    d.ChartTitle,
		Counts:        counts,
	}

	renderStart := time.Now()
	handle, renderErr := s.renderers[d.Slug].Render(ctx, d.ChartTitle, counts)
	switch {
	case renderErr == nil:
		view.ChartVersion = handle.ETag()
		view.HasChart = true
		infrastructure.RecordChartRenderMetrics(ctx, s.metrics, d.Slug, time.Since(renderStart), nil)
	case errors.Is(renderErr, chart.ErrNoData):
		// An empty workbook has no chart; the view still renders.
		s.logger.InfoContext(ctx, "no chart data for dashboard",
			slog.String("dashboard", d.Slug))
	default:
		infrastructure.RecordChartRenderMetrics(ctx, s.metrics, d.Slug, time.Since(renderStart), renderErr)
		s.logger.ErrorContext(ctx, "chart render failed",
			slog.String("dashboard", d.Slug),
			slog.String("error", renderErr.Error()))
	}

	infrastructure.RecordDashboardLoadMetrics(ctx, s.metrics, d.Slug, time.Since(start), dataset.RowCount(), nil)
	s.logger.InfoContext(ctx, "dashboard view built",
		slog.String("dashboard", d.Slug),
		slog.String("load_id", dataset.LoadID),
		slog.Int("rows", dataset.RowCount()),
		slog.Int("tables", len(view.Tables)),
		slog.Int("categories", counts.Len()),
		slog.Duration("duration", time.Since(start)))

	return view, nil
}

// ChartHandle returns the live chart image for a dashboard, or
// ErrNoChartRendered while no load has succeeded yet.
func (s *DashboardService) ChartHandle(slug string) (*chart.Handle, error) {
	if _, err := s.Dashboard(slug); err != nil {
		return nil, err
	}
	handle := s.renderers[slug].Current()
	if handle == nil {
		return nil, ErrNoChartRendered
	}
	return handle, nil
}

// Close releases the chart handles. Called on shutdown.
func (s *DashboardService) Close() {
	for _, r := range s.renderers {
		r.Close()
	}
}

// buildTables slices the dataset into the dashboard's tables. The
// expense dashboard renders one table per configured category label; the
// performance dashboard renders a single table sorted by alert priority.
func (s *DashboardService) buildTables(d *Dashboard, dataset *domain.Dataset) []Table {
	switch d.Slug {
	case config.ExpenseDashboardSlug:
		labels := s.config.Dashboard.CategoryLabels
		tables := make([]Table, 0, len(labels))
		for _, label := range labels {
			rows := dataprocessing.FilterByCategory(dataset.Rows, label)
			tables = append(tables, formatTable(label, d.Schema, rows))
		}
		return tables
	case config.PerformanceDashboardSlug:
		rows := dataprocessing.SortByPriority(dataset.Rows, s.config.Dashboard.AlertPriorities, domain.ColumnEfficiencyAlert)
		return []Table{formatTable(d.Title, d.Schema, rows)}
	default:
		return []Table{formatTable(d.Title, d.Schema, dataset.Rows)}
	}
}

// formatTable renders rows into display cells in schema column order.
// Currency and percent columns go through the formatters; everything
// else passes through verbatim.
func formatTable(title string, schema domain.Schema, rows []domain.Row) Table {
	table := Table{
		Title:   title,
		Columns: schema.Columns,
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		cells := make([]string, len(schema.Columns))
		for i, column := range schema.Columns {
			cells[i] = format.Cell(schema.Role(column), row[column])
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// buildSummary computes and formats the stat cards. A column with no
// numeric cells yields the formatter's zero sentinel, never an error.
func buildSummary(rows []domain.Row, specs []dataprocessing.StatSpec) []SummaryCard {
	results := dataprocessing.Summarize(rows, specs)
	cards := make([]SummaryCard, 0, len(results))
	for _, r := range results {
		var value string
		switch r.Role {
		case domain.RoleCurrency:
			value = format.Currency(r.Value)
		case domain.RolePercent:
			value = format.Percent(r.Value)
		default:
			value = strconv.FormatFloat(r.Value, 'f', -1, 64)
		}
		cards = append(cards, SummaryCard{Label: r.Label, Value: value})
	}
	return cards
}
