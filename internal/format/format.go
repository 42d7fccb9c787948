// Package format holds the pure display formatters applied to cell
// values at render time. Formatting never happens during normalization;
// numeric columns stay raw in the dataset until a view is assembled.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"finboard/pkg/contracts/domain"
)

// Display sentinels for non-finite input.
const (
	ZeroCurrency = "$0"
	ZeroPercent  = "0%"
)

var oneHundred = decimal.NewFromInt(100)

// Currency renders a value as US-dollar currency with two decimals and
// thousands separators. Non-finite input (NaN, ±Inf) renders as "$0".
// The value is rounded to whole cents before display.
func Currency(v float64) string {
	if !isFinite(v) {
		return ZeroCurrency
	}
	return money.New(int64(math.Round(v*100)), money.USD).Display()
}

// Percent renders a decimal fraction as a percentage rounded to one
// decimal place (0.061 -> "6.1%"). Non-finite input renders as "0%".
func Percent(v float64) string {
	if !isFinite(v) {
		return ZeroPercent
	}
	return decimal.NewFromFloat(v).Mul(oneHundred).StringFixed(1) + "%"
}

// Number parses a numeric cell as produced by the workbook reader,
// tolerating thousands separators in formatted cells. It returns NaN
// when the cell does not parse, so downstream formatters fall back to
// their sentinels.
func Number(cell string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Cell renders one cell according to its column role. Text cells pass
// through verbatim; currency and percent cells are parsed and formatted,
// degrading to the "$0"/"0%" sentinels when the cell is not numeric.
func Cell(role domain.ColumnRole, raw string) string {
	switch role {
	case domain.RoleCurrency:
		return Currency(Number(raw))
	case domain.RolePercent:
		return Percent(Number(raw))
	default:
		return raw
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
