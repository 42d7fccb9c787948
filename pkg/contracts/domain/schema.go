package domain

// ColumnRole identifies how a column's cells are rendered.
type ColumnRole string

const (
	RoleText     ColumnRole = "text"
	RoleCurrency ColumnRole = "currency"
	RolePercent  ColumnRole = "percent"
)

// FieldRule derives one output field during normalization. The source
// cell is copied (trimmed when Trim is set); when the result is empty
// the Default sentinel is used instead. Rules are pure per-row data
// transformations; they never fail on absent columns.
type FieldRule struct {
	Field   string `json:"field"`
	Source  string `json:"source"`
	Default string `json:"default"`
	Trim    bool   `json:"trim,omitempty"`
}

// Schema describes one workbook layout the dashboards understand: the
// display column order, per-column render roles and the normalization
// rules. Workbook variants with diverging headers are distinct schema
// versions rather than one loosely-typed shape.
type Schema struct {
	Name    string                `json:"name"`
	Version string                `json:"version"`
	Columns []string              `json:"columns"`
	Roles   map[string]ColumnRole `json:"roles"`
	Rules   []FieldRule           `json:"rules,omitempty"`
}

// Role returns the render role for a column, RoleText when undeclared.
func (s Schema) Role(column string) ColumnRole {
	if role, ok := s.Roles[column]; ok {
		return role
	}
	return RoleText
}

// Column names shared by the known workbook layouts.
const (
	ColumnCategory             = "Category"
	ColumnMetricName           = "Metric_Name"
	ColumnResponsibility       = "Responsibility"
	ColumnValue2024            = "Value_2024_Jan_July"
	ColumnValue2025            = "Value_2025_Jan_July"
	ColumnGrowthRate           = "Growth_Rate_Decimal"
	ColumnAnchorVsPrior        = "Anchor vs Prior Avg ($)"
	ColumnMarginRisk           = "Margin Risk Assessment"
	ColumnExpenseAlignment     = "Expense Growth Alignment"
	ColumnEfficiencyAlert      = "Efficiency Alert"
	ColumnMarketingEfficiency  = "Marketing Spend Efficiency"
	ColumnElasticity           = "Elasticity Classification"
	ColumnDiagnosticSummary    = "Performance Diagnostic Summary"
	DefaultMonthColumn         = "Jul 2025"
)

// ExpenseAnalysisSchema describes the combined YOY expense and cashflow
// workbook. It carries no derivations; normalization only guarantees the
// complete-record property.
func ExpenseAnalysisSchema() Schema {
	return Schema{
		Name:    "expense-analysis",
		Version: "v1",
		Columns: []string{
			ColumnCategory,
			ColumnMetricName,
			ColumnResponsibility,
			ColumnValue2024,
			ColumnValue2025,
			ColumnGrowthRate,
		},
		Roles: map[string]ColumnRole{
			ColumnValue2024:  RoleCurrency,
			ColumnValue2025:  RoleCurrency,
			ColumnGrowthRate: RolePercent,
		},
	}
}

// FinancialPerformanceSchema describes the margin-risk workbook. The
// month column header varies between exports ("Jul 2025" currently, a
// bare month name such as "May" in older files); passing the empty
// string selects the current layout. Older layouts are reported as v1.
func FinancialPerformanceSchema(monthColumn string) Schema {
	version := "v2"
	if monthColumn == "" {
		monthColumn = DefaultMonthColumn
	}
	if monthColumn != DefaultMonthColumn {
		version = "v1"
	}
	return Schema{
		Name:    "financial-performance",
		Version: version,
		Columns: []string{
			ColumnCategory,
			monthColumn,
			ColumnAnchorVsPrior,
			ColumnMarginRisk,
			ColumnDiagnosticSummary,
			ColumnExpenseAlignment,
			ColumnEfficiencyAlert,
			ColumnMarketingEfficiency,
			ColumnElasticity,
		},
		Roles: map[string]ColumnRole{
			monthColumn:               RoleCurrency,
			ColumnAnchorVsPrior:       RoleCurrency,
			ColumnMarketingEfficiency: RolePercent,
		},
		Rules: []FieldRule{
			{Field: ColumnDiagnosticSummary, Source: ColumnMarginRisk, Default: UnknownLabel},
			{Field: ColumnElasticity, Source: ColumnElasticity, Default: "", Trim: true},
		},
	}
}
