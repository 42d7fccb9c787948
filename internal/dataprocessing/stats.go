package dataprocessing

import (
	"math"

	"github.com/montanaflynn/stats"

	"finboard/internal/format"
	"finboard/pkg/contracts/domain"
)

// StatOp selects the figure computed over a column's numeric cells.
type StatOp string

const (
	StatSum  StatOp = "sum"
	StatMean StatOp = "mean"
	StatMax  StatOp = "max"
)

// StatSpec describes one summary card: the column to aggregate, the
// operation, and the role used to format the resulting figure.
type StatSpec struct {
	Label  string          `json:"label"`
	Column string          `json:"column"`
	Op     StatOp          `json:"op"`
	Role   domain.ColumnRole `json:"role"`
}

// StatResult is one computed summary figure. Value is NaN when the
// column held no numeric cells; formatters turn that into the zero
// sentinel rather than an error.
type StatResult struct {
	Label string
	Value float64
	Role  domain.ColumnRole
}

// ColumnValues parses the numeric cells of one column, skipping cells
// that do not parse as numbers.
func ColumnValues(rows []domain.Row, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		v := format.Number(row[column])
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}

// Summarize computes one figure per spec over the rows. Unknown
// operations and empty columns produce NaN results.
func Summarize(rows []domain.Row, specs []StatSpec) []StatResult {
	results := make([]StatResult, 0, len(specs))
	for _, spec := range specs {
		values := ColumnValues(rows, spec.Column)

		var figure float64
		var err error
		switch spec.Op {
		case StatSum:
			figure, err = stats.Sum(values)
		case StatMean:
			figure, err = stats.Mean(values)
		case StatMax:
			figure, err = stats.Max(values)
		default:
			err = stats.EmptyInputErr
		}
		if err != nil {
			figure = math.NaN()
		}

		results = append(results, StatResult{
			Label: spec.Label,
			Value: figure,
			Role:  spec.Role,
		})
	}
	return results
}
