// Package dataprocessing implements the workbook pipeline behind the
// dashboards: fetching a spreadsheet resource, decoding its first sheet
// into row records, normalizing rows against a schema, and deriving the
// filtered, sorted and aggregated views the presentation layer renders.
//
// # Data Flow
//
// The typical flow through this package:
//
//	resource bytes → Loader → Dataset → {FilterByCategory, SortByPriority, CountBy, Summarize} → views
//
// # Usage
//
// Loading a workbook:
//
//	loader := dataprocessing.NewLoader(dataprocessing.NewFileFetcher(dataDir), logger)
//	ds, err := loader.Load(ctx, "expense-analysis.xlsx", domain.ExpenseAnalysisSchema())
//	if err != nil {
//	    // err is a *LoadError carrying the single user-facing message
//	}
//
// Deriving views:
//
//	yoy := dataprocessing.FilterByCategory(ds.Rows, "YOY Expense & Profitability Analysis")
//	sorted := dataprocessing.SortByPriority(ds.Rows, priorities, "Efficiency Alert")
//	counts := dataprocessing.CountBy(ds.Rows, "Margin Risk Assessment")
//
// # Error Handling
//
// Load is the only failing operation and it fails with exactly one error
// kind, *LoadError (fetch failed or decode failed); there is no retry
// and no partial dataset. Every other operation is total: missing
// columns and blank cells degrade to sentinel values instead of
// returning errors.
package dataprocessing
