package dataprocessing

import (
	"finboard/pkg/contracts/domain"
)

// CountBy tallies the distinct values of field across rows. Blank cells
// and absent columns count under the "Unknown" sentinel, so every row
// contributes exactly one count and the tally total equals the number
// of rows scanned. Keys keep first-seen order, making chart labels
// deterministic for identical input order. Purely categorical; no
// bucketing or numeric binning.
func CountBy(rows []domain.Row, field string) *domain.CountMap {
	counts := domain.NewCountMap()
	for _, row := range rows {
		key := row[field]
		if key == "" {
			key = domain.UnknownLabel
		}
		counts.Add(key)
	}
	return counts
}
