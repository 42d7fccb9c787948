package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	mnoop "go.opentelemetry.io/otel/metric/noop"

	"finboard/internal/config"
	"finboard/internal/dataprocessing"
	"finboard/internal/infrastructure"
	"finboard/internal/shared/testutil"
	"finboard/pkg/contracts/domain"
)

// testConfig returns a default configuration rooted in a temp directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = base
	cfg.Paths.ReportsDir = filepath.Join(base, "reports")
	cfg.Paths.LogsDir = filepath.Join(base, "logs")
	return cfg
}

// writeWorkbook builds an xlsx fixture in dir: headers on row 1, data
// rows below.
func writeWorkbook(t *testing.T, dir, name string, headers []string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	require.NoError(t, f.SaveAs(filepath.Join(dir, name)))
}

func writeExpenseFixture(t *testing.T, dir string) {
	t.Helper()
	writeWorkbook(t, dir, config.DefaultExpenseResource,
		[]string{"Category", "Metric_Name", "Responsibility", "Value_2024_Jan_July", "Value_2025_Jan_July", "Growth_Rate_Decimal"},
		[][]interface{}{
			{"YOY Expense & Profitability Analysis", "Payroll", "Finance", 180000, 195500.5, 0.086},
			{"YOY Expense & Profitability Analysis", "Marketing", "Growth", 60000, 75000, 0.25},
			{"Cash Flow Projection (Aug–Dec 2025)", "Opening Balance", "Treasury", "", 410000, ""},
			{"Advertising ROI", "Spot Check", "Growth", 1000, 2000, 0.5},
		})
}

func writePerformanceFixture(t *testing.T, dir string) {
	t.Helper()
	writeWorkbook(t, dir, config.DefaultPerformanceResource,
		[]string{"Category", "Jul 2025", "Anchor vs Prior Avg ($)", "Margin Risk Assessment", "Expense Growth Alignment", "Efficiency Alert", "Marketing Spend Efficiency", "Elasticity Classification"},
		[][]interface{}{
			{"Payroll", 61000, 1200.5, "Low", "Aligned", "Stable – No Action", 0.125, "  Inelastic  "},
			{"Marketing", 45000, -3200.75, "High", "Misaligned", "Investigate – Potential Risk", 0.25, "Elastic"},
			{"Travel", 8000, 150, "", "Aligned", "Below Threshold", "", "Unit"},
			{"R&D", 30000, 900, "Medium", "Aligned", "Escalate – Urgent", 0.5, "Elastic"},
			{"Facilities", 12000, 75, "Low", "Aligned", "Efficient Scaling", 0.125, "Inelastic"},
		})
}

func TestDashboardsListing(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(testConfig(t), logger)
	defer svc.Close()

	infos := svc.Dashboards()
	require.Len(t, infos, 2)
	assert.Equal(t, DashboardInfo{
		Slug:     "expense",
		Title:    "Expense Analysis",
		Resource: "expense-analysis.xlsx",
		Path:     "/dashboards/expense",
	}, infos[0])
	assert.Equal(t, DashboardInfo{
		Slug:     "performance",
		Title:    "Financial Performance",
		Resource: "financial-performance.xlsx",
		Path:     "/dashboards/performance",
	}, infos[1])
}

func TestDashboardLookup(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(testConfig(t), logger)
	defer svc.Close()

	d, err := svc.Dashboard(config.PerformanceDashboardSlug)
	require.NoError(t, err)
	assert.Equal(t, "Financial Performance", d.Title)

	_, err = svc.Dashboard("liquidity")
	assert.ErrorIs(t, err, ErrDashboardNotFound)

	_, err = svc.BuildView(context.Background(), "liquidity")
	assert.ErrorIs(t, err, ErrDashboardNotFound)

	_, err = svc.ChartHandle("liquidity")
	assert.ErrorIs(t, err, ErrDashboardNotFound)
}

func TestBuildViewExpense(t *testing.T) {
	cfg := testConfig(t)
	writeExpenseFixture(t, cfg.GetDataDir())

	logger, logHandler := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(cfg, logger)
	defer svc.Close()

	view, err := svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	require.NoError(t, err)

	assert.Equal(t, "expense", view.Slug)
	assert.Equal(t, "Expense Analysis", view.Title)
	assert.Equal(t, "expense-analysis.xlsx", view.Resource)
	assert.Equal(t, "expense-analysis", view.SchemaName)
	assert.Equal(t, "v1", view.SchemaVersion)
	assert.Equal(t, 4, view.RowCount)
	assert.NotEmpty(t, view.LoadID)
	assert.Len(t, view.Fingerprint, 32)
	assert.False(t, view.LoadedAt.IsZero())

	require.Len(t, view.Summary, 3)
	assert.Equal(t, SummaryCard{Label: "Total 2024 (Jan-Jul)", Value: "$241,000.00"}, view.Summary[0])
	assert.Equal(t, SummaryCard{Label: "Total 2025 (Jan-Jul)", Value: "$682,500.50"}, view.Summary[1])
	assert.Equal(t, SummaryCard{Label: "Mean Growth Rate", Value: "27.9%"}, view.Summary[2])

	// One table per configured category label; the unmatched row appears
	// in neither.
	require.Len(t, view.Tables, 2)
	yoy := view.Tables[0]
	assert.Equal(t, "YOY Expense & Profitability Analysis", yoy.Title)
	assert.Equal(t, []string{"Category", "Metric_Name", "Responsibility", "Value_2024_Jan_July", "Value_2025_Jan_July", "Growth_Rate_Decimal"}, yoy.Columns)
	require.Len(t, yoy.Rows, 2)
	assert.Equal(t, []string{"YOY Expense & Profitability Analysis", "Payroll", "Finance", "$180,000.00", "$195,500.50", "8.6%"}, yoy.Rows[0])
	assert.Equal(t, "25.0%", yoy.Rows[1][5])

	cash := view.Tables[1]
	assert.Equal(t, "Cash Flow Projection (Aug–Dec 2025)", cash.Title)
	require.Len(t, cash.Rows, 1)
	// Blank numeric cells render as the zero sentinels.
	assert.Equal(t, "$0", cash.Rows[0][3])
	assert.Equal(t, "$410,000.00", cash.Rows[0][4])
	assert.Equal(t, "0%", cash.Rows[0][5])

	// Chart counts cover every row, tables or not, in first-seen order.
	assert.Equal(t, "Category", view.ChartField)
	assert.Equal(t, "Rows by Category", view.ChartTitle)
	require.NotNil(t, view.Counts)
	assert.Equal(t, []string{
		"YOY Expense & Profitability Analysis",
		"Cash Flow Projection (Aug–Dec 2025)",
		"Advertising ROI",
	}, view.Counts.Keys())
	assert.Equal(t, 2, view.Counts.Count("YOY Expense & Profitability Analysis"))
	assert.Equal(t, 4, view.Counts.Total())

	assert.True(t, view.HasChart)
	assert.NotEmpty(t, view.ChartVersion)

	handle, err := svc.ChartHandle(config.ExpenseDashboardSlug)
	require.NoError(t, err)
	assert.Equal(t, view.ChartVersion, handle.ETag())
	assert.NotEmpty(t, handle.Bytes())

	assert.True(t, logHandler.ContainsMessage("dashboard view built"))
}

func TestBuildViewPerformance(t *testing.T) {
	cfg := testConfig(t)
	writePerformanceFixture(t, cfg.GetDataDir())

	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(cfg, logger)
	defer svc.Close()

	view, err := svc.BuildView(context.Background(), config.PerformanceDashboardSlug)
	require.NoError(t, err)

	assert.Equal(t, "financial-performance", view.SchemaName)
	assert.Equal(t, "v2", view.SchemaVersion)
	assert.Equal(t, 5, view.RowCount)

	require.Len(t, view.Summary, 2)
	assert.Equal(t, SummaryCard{Label: "Total Spend (Jul 2025)", Value: "$156,000.00"}, view.Summary[0])
	assert.Equal(t, SummaryCard{Label: "Mean Marketing Spend Efficiency", Value: "25.0%"}, view.Summary[1])

	require.Len(t, view.Tables, 1)
	table := view.Tables[0]
	assert.Equal(t, "Financial Performance", table.Title)
	require.Len(t, table.Rows, 5)

	// Rows sorted by alert priority; the unranked alert sorts last.
	order := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		order = append(order, row[0])
	}
	assert.Equal(t, []string{"Marketing", "Facilities", "Payroll", "Travel", "R&D"}, order)

	assert.Equal(t, []string{
		"Marketing", "$45,000.00", "-$3,200.75", "High", "High",
		"Misaligned", "Investigate – Potential Risk", "25.0%", "Elastic",
	}, table.Rows[0])

	// The elasticity trim rule applies during normalization.
	assert.Equal(t, "Inelastic", table.Rows[2][8])

	// A blank margin risk yields the Unknown diagnostic and a sentinel
	// efficiency cell.
	travel := table.Rows[3]
	assert.Equal(t, "Travel", travel[0])
	assert.Equal(t, "", travel[3])
	assert.Equal(t, domain.UnknownLabel, travel[4])
	assert.Equal(t, "0%", travel[7])

	assert.Equal(t, "Margin Risk Assessment", view.ChartField)
	assert.Equal(t, []string{"Low", "High", domain.UnknownLabel, "Medium"}, view.Counts.Keys())
	assert.Equal(t, 2, view.Counts.Count("Low"))
	assert.Equal(t, 5, view.Counts.Total())
	assert.True(t, view.HasChart)
}

func TestBuildViewLoadFailure(t *testing.T) {
	cfg := testConfig(t) // empty data directory

	logger, logHandler := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(cfg, logger)
	defer svc.Close()

	view, err := svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	assert.Nil(t, view)

	var loadErr *dataprocessing.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, dataprocessing.ReasonFetchFailed, loadErr.Reason)
	assert.Equal(t, config.DefaultExpenseResource, loadErr.Resource)

	_, err = svc.ChartHandle(config.ExpenseDashboardSlug)
	assert.ErrorIs(t, err, ErrNoChartRendered)

	assert.True(t, logHandler.ContainsMessage("dashboard load failed"))
}

func TestBuildViewLoadFailureKeepsPriorChart(t *testing.T) {
	cfg := testConfig(t)
	writeExpenseFixture(t, cfg.GetDataDir())

	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(cfg, logger)
	defer svc.Close()

	view, err := svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(cfg.GetDataDir(), config.DefaultExpenseResource)))

	_, err = svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	require.Error(t, err)

	// The failed load leaves the prior chart serving.
	handle, err := svc.ChartHandle(config.ExpenseDashboardSlug)
	require.NoError(t, err)
	assert.Equal(t, view.ChartVersion, handle.ETag())
	assert.False(t, handle.Closed())
}

func TestBuildViewEmptyWorkbook(t *testing.T) {
	cfg := testConfig(t)
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(filepath.Join(cfg.GetDataDir(), config.DefaultExpenseResource)))

	logger, logHandler := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(cfg, logger)
	defer svc.Close()

	view, err := svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	require.NoError(t, err)

	assert.Zero(t, view.RowCount)
	assert.False(t, view.HasChart)
	assert.Empty(t, view.ChartVersion)
	assert.Equal(t, 0, view.Counts.Len())

	// The tables still exist, one per label, with no rows.
	require.Len(t, view.Tables, 2)
	assert.Empty(t, view.Tables[0].Rows)
	assert.Empty(t, view.Tables[1].Rows)

	// Numeric summaries over no rows fall back to the zero sentinels.
	require.Len(t, view.Summary, 3)
	assert.Equal(t, "$0", view.Summary[0].Value)
	assert.Equal(t, "$0", view.Summary[1].Value)
	assert.Equal(t, "0%", view.Summary[2].Value)

	_, err = svc.ChartHandle(config.ExpenseDashboardSlug)
	assert.ErrorIs(t, err, ErrNoChartRendered)

	assert.True(t, logHandler.ContainsMessage("no chart data for dashboard"))
}

func TestChartHandleReplacedOnRebuild(t *testing.T) {
	cfg := testConfig(t)
	writeExpenseFixture(t, cfg.GetDataDir())

	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(cfg, logger)
	defer svc.Close()

	_, err := svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	require.NoError(t, err)
	first, err := svc.ChartHandle(config.ExpenseDashboardSlug)
	require.NoError(t, err)

	_, err = svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	require.NoError(t, err)
	second, err := svc.ChartHandle(config.ExpenseDashboardSlug)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID(), second.ID())
	assert.True(t, first.Closed())
	assert.Nil(t, first.Bytes())
	assert.NotEmpty(t, second.Bytes())

	svc.Close()
	_, err = svc.ChartHandle(config.ExpenseDashboardSlug)
	assert.ErrorIs(t, err, ErrNoChartRendered)
}

func TestBuildViewUpstreamFetch(t *testing.T) {
	src := t.TempDir()
	writeWorkbook(t, src, config.DefaultExpenseResource,
		[]string{"Category", "Metric_Name"},
		[][]interface{}{{"YOY Expense & Profitability Analysis", "Payroll"}})
	payload, err := os.ReadFile(filepath.Join(src, config.DefaultExpenseResource))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+config.DefaultExpenseResource {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	defer server.Close()

	cfg := testConfig(t) // local data dir stays empty
	cfg.Dashboard.UpstreamURL = server.URL

	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithLogger(cfg, logger)
	defer svc.Close()

	view, err := svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	require.NoError(t, err)
	assert.Equal(t, 1, view.RowCount)
	assert.Equal(t, "Payroll", view.Tables[0].Rows[0][1])
}

func TestBuildViewWithMetrics(t *testing.T) {
	meter := mnoop.NewMeterProvider().Meter("test")
	metrics, err := infrastructure.CreateDashboardMetrics(meter)
	require.NoError(t, err)

	cfg := testConfig(t)
	writeExpenseFixture(t, cfg.GetDataDir())

	logger, _ := testutil.NewTestLogger(t)
	svc := NewDashboardServiceWithMetrics(cfg, logger, metrics)
	defer svc.Close()

	view, err := svc.BuildView(context.Background(), config.ExpenseDashboardSlug)
	require.NoError(t, err)
	assert.True(t, view.HasChart)
}
