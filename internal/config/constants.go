package config

import "time"

// Application constants shared across the FinBoard binaries.
const (
	// Application Info
	AppName    = "FinBoard"
	AppVersion = "1.2.0"

	// Dashboard slugs, also the path segments under /dashboards/
	ExpenseDashboardSlug     = "expense"
	PerformanceDashboardSlug = "performance"

	// Workbook resources served from the data directory
	DefaultExpenseResource     = "expense-analysis.xlsx"
	DefaultPerformanceResource = "financial-performance.xlsx"

	// Month column the performance dashboard reads by default
	DefaultMonthColumn = "Jul 2025"

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultFetchTimeout = 30 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints (internal)
	APIBasePath        = "/api"
	DashboardsEndpoint = "/api/dashboards"
	ResourcesEndpoint  = "/api/resources"
	HealthEndpoint     = "/api/health"
	MetricsEndpoint    = "/metrics"
)

// DefaultCategoryLabels returns the expense dashboard's section labels in
// display order. Each label selects the rows for one table.
func DefaultCategoryLabels() []string {
	return []string{
		"YOY Expense & Profitability Analysis",
		"Cash Flow Projection (Aug–Dec 2025)",
	}
}

// DefaultAlertPriorities returns the efficiency alert labels in triage
// order. The performance table sorts rows by position in this list;
// unlisted labels sort last.
func DefaultAlertPriorities() []string {
	return []string{
		"Investigate – Potential Risk",
		"Efficient Scaling",
		"Stable – No Action",
		"Below Threshold",
	}
}
